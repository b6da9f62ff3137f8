// Package gateway assembles and performs the outbound call for one endpoint
// invocation.
package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"github.com/TharinduNimesh/apiforge/internal/model"
)

// MissingParameterError names the required parameter absent from the caller
// payload.
type MissingParameterError struct {
	Name string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("required parameter '%s' is missing", e.Name)
}

// FileValue is one uploaded file extracted from the inbound multipart body.
type FileValue struct {
	Filename    string
	ContentType string
	Data        []byte
}

// OutboundRequest is a fully assembled upstream request.
type OutboundRequest struct {
	Method      string
	URL         string
	Header      http.Header
	Body        []byte
	ContentType string // empty when Body is empty
}

// Build compiles the endpoint path, query string, headers, and body from the
// declared parameters and the caller-supplied values. Undeclared caller
// fields never reach the outbound request. Exactly one of JSON body,
// multipart body, or no body is produced; once any body parameter carries a
// value the multipart form is not used.
func Build(api *model.Api, endpoint *model.Endpoint, params []model.Parameter, values map[string]any) (*OutboundRequest, error) {
	path := endpoint.Path

	// path parameters first, to construct the URL
	for _, p := range params {
		if p.Location != model.LocPath {
			continue
		}
		v, ok := values[p.Name]
		s := stringify(v)
		if !ok || s == "" {
			if p.Required {
				return nil, &MissingParameterError{Name: p.Name}
			}
			continue // unresolved tokens are left as-is
		}
		path = strings.ReplaceAll(path, "{"+p.Name+"}", s)
	}

	// strip one trailing slash from the base and one leading slash from the
	// path so the join is never "//" and never missing a slash
	base := strings.TrimSuffix(api.BaseURL, "/")
	path = strings.TrimPrefix(path, "/")
	target := base
	if path != "" {
		target = base + "/" + path
	}

	query := url.Values{}
	header := http.Header{}
	header.Set("Accept", "application/json")

	var jsonBody map[string]any
	var fileParts []filePart
	var fieldParts []fieldPart

	for _, p := range params {
		if p.Location == model.LocPath {
			continue
		}

		v, ok := values[p.Name]
		if !ok {
			if p.Required {
				return nil, &MissingParameterError{Name: p.Name}
			}
			continue
		}

		switch p.Location {
		case model.LocQuery:
			for _, s := range stringifyAll(v) {
				query.Add(p.Name, s)
			}
		case model.LocHeader:
			for _, s := range stringifyAll(v) {
				header.Add(p.Name, s)
			}
		case model.LocBody:
			if jsonBody == nil {
				jsonBody = map[string]any{}
			}
			jsonBody[p.Name] = v
		case model.LocFormFile:
			switch fv := v.(type) {
			case FileValue:
				fileParts = append(fileParts, filePart{name: p.Name, file: fv})
			case []FileValue:
				// array values become repeated name[] parts
				for _, f := range fv {
					fileParts = append(fileParts, filePart{name: p.Name + "[]", file: f})
				}
			}
		case model.LocFormField:
			fieldParts = append(fieldParts, fieldPart{name: p.Name, value: stringify(v)})
		}
	}

	if len(query) > 0 {
		target = target + "?" + query.Encode()
	}

	out := &OutboundRequest{
		Method: endpoint.Method,
		URL:    target,
		Header: header,
	}

	switch {
	case jsonBody != nil:
		b, err := json.Marshal(jsonBody)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		out.Body = b
		out.ContentType = "application/json"
	case len(fileParts) > 0 || len(fieldParts) > 0:
		body, contentType, err := encodeMultipart(fileParts, fieldParts)
		if err != nil {
			return nil, fmt.Errorf("encode multipart: %w", err)
		}
		out.Body = body
		out.ContentType = contentType
	}

	return out, nil
}

type filePart struct {
	name string
	file FileValue
}

type fieldPart struct {
	name  string
	value string
}

func encodeMultipart(files []filePart, fields []fieldPart) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, fp := range files {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fp.name, fp.file.Filename))
		ct := fp.file.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(fp.file.Data); err != nil {
			return nil, "", err
		}
	}

	for _, fp := range fields {
		if err := w.WriteField(fp.name, fp.value); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// stringify renders a caller value the way it should appear in a URL or
// header. JSON numbers arrive as float64; render integers without exponent.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}

// stringifyAll expands array values so repeated names are all appended.
func stringifyAll(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			out = append(out, stringify(e))
		}
		return out
	case []string:
		return t
	default:
		return []string{stringify(v)}
	}
}
