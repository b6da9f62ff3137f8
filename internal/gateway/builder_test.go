package gateway

import (
	"encoding/json"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/TharinduNimesh/apiforge/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func param(name, in, typ string, required bool) model.Parameter {
	loc, ok := model.ParseLocation(in, typ)
	if !ok {
		panic("bad test parameter location: " + in)
	}
	return model.Parameter{Name: name, ParamIn: in, Type: typ, Required: required, Location: loc}
}

func testApi(baseURL string) *model.Api {
	return &model.Api{ID: "api1", Name: "test", BaseURL: baseURL, IsActive: true, Type: model.ApiTypeFree}
}

func testEndpoint(path, method string) *model.Endpoint {
	return &model.Endpoint{ID: "ep1", ApiID: "api1", Path: path, Method: method}
}

func TestBuildPathSubstitution(t *testing.T) {
	out, err := Build(
		testApi("https://api.example.com"),
		testEndpoint("/users/{userId}/orders", "GET"),
		[]model.Parameter{param("userId", "path", "string", true)},
		map[string]any{"userId": "42"},
	)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/users/42/orders", out.URL)
}

func TestBuildSlashNormalization(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		path    string
		want    string
	}{
		{"trailing and leading", "https://api.example.com/", "/v1/x", "https://api.example.com/v1/x"},
		{"neither", "https://api.example.com", "v1/x", "https://api.example.com/v1/x"},
		{"only trailing", "https://api.example.com/", "v1/x", "https://api.example.com/v1/x"},
		{"empty path uses base unmodified", "https://api.example.com/", "/", "https://api.example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Build(testApi(tt.baseURL), testEndpoint(tt.path, "GET"), nil, map[string]any{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.URL)
		})
	}
}

func TestBuildMissingRequiredParameter(t *testing.T) {
	tests := []struct {
		name  string
		param model.Parameter
	}{
		{"path", param("userId", "path", "string", true)},
		{"query", param("amount", "query", "number", true)},
		{"header", param("X-Trace", "header", "string", true)},
		{"body", param("payload", "body", "string", true)},
		{"form file", param("doc", "formData", "file", true)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(testApi("https://api.example.com"), testEndpoint("/users/{userId}", "POST"),
				[]model.Parameter{tt.param}, map[string]any{})
			var missing *MissingParameterError
			require.ErrorAs(t, err, &missing)
			assert.Equal(t, tt.param.Name, missing.Name)
		})
	}
}

func TestBuildOptionalPathTokenLeftAsIs(t *testing.T) {
	out, err := Build(
		testApi("https://api.example.com"),
		testEndpoint("/users/{userId}", "GET"),
		[]model.Parameter{param("userId", "path", "string", false)},
		map[string]any{},
	)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/users/{userId}", out.URL)
}

func TestBuildQueryAndHeaders(t *testing.T) {
	out, err := Build(
		testApi("https://api.example.com"),
		testEndpoint("/search", "GET"),
		[]model.Parameter{
			param("q", "query", "string", true),
			param("tag", "query", "string", false),
			param("X-Client", "header", "string", false),
		},
		map[string]any{
			"q":        "weather",
			"tag":      []any{"a", "b"},
			"X-Client": "cli",
			"ignored":  "never sent",
		},
	)
	require.NoError(t, err)

	u, err := url.Parse(out.URL)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, []string{"weather"}, q["q"])
	assert.Equal(t, []string{"a", "b"}, q["tag"], "array values are all appended")
	assert.NotContains(t, q, "ignored", "undeclared fields never reach the request")

	assert.Equal(t, "cli", out.Header.Get("X-Client"))
	assert.Equal(t, "application/json", out.Header.Get("Accept"))
}

func TestBuildNumberStringification(t *testing.T) {
	// JSON numbers decode as float64; integers must not gain an exponent
	out, err := Build(
		testApi("https://api.example.com"),
		testEndpoint("/q", "GET"),
		[]model.Parameter{param("days", "query", "number", true)},
		map[string]any{"days": float64(42)},
	)
	require.NoError(t, err)
	assert.Contains(t, out.URL, "days=42")
}

func TestBuildJSONBody(t *testing.T) {
	out, err := Build(
		testApi("https://api.example.com"),
		testEndpoint("/orders", "POST"),
		[]model.Parameter{
			param("item", "body", "string", true),
			param("count", "body", "number", false),
		},
		map[string]any{"item": "widget", "count": float64(3)},
	)
	require.NoError(t, err)
	assert.Equal(t, "application/json", out.ContentType)

	var body map[string]any
	require.NoError(t, json.Unmarshal(out.Body, &body))
	assert.Equal(t, map[string]any{"item": "widget", "count": float64(3)}, body)
}

func TestBuildMultipart(t *testing.T) {
	out, err := Build(
		testApi("https://api.example.com"),
		testEndpoint("/upload", "POST"),
		[]model.Parameter{
			param("doc", "formData", "file", true),
			param("region", "formData", "string", false),
		},
		map[string]any{
			"doc":    FileValue{Filename: "a.txt", ContentType: "text/plain", Data: []byte("hello")},
			"region": "eu",
		},
	)
	require.NoError(t, err)

	mediaType, params, err := mime.ParseMediaType(out.ContentType)
	require.NoError(t, err)
	require.Equal(t, "multipart/form-data", mediaType)

	r := multipart.NewReader(strings.NewReader(string(out.Body)), params["boundary"])
	form, err := r.ReadForm(1 << 20)
	require.NoError(t, err)

	require.Len(t, form.File["doc"], 1)
	assert.Equal(t, "a.txt", form.File["doc"][0].Filename)
	assert.Equal(t, "text/plain", form.File["doc"][0].Header.Get("Content-Type"))
	assert.Equal(t, []string{"eu"}, form.Value["region"])
}

func TestBuildMultipartFileArray(t *testing.T) {
	out, err := Build(
		testApi("https://api.example.com"),
		testEndpoint("/upload", "POST"),
		[]model.Parameter{param("docs", "formData", "file", true)},
		map[string]any{
			"docs": []FileValue{
				{Filename: "a.txt", ContentType: "text/plain", Data: []byte("a")},
				{Filename: "b.csv", ContentType: "text/csv", Data: []byte("b")},
			},
		},
	)
	require.NoError(t, err)

	_, params, err := mime.ParseMediaType(out.ContentType)
	require.NoError(t, err)
	r := multipart.NewReader(strings.NewReader(string(out.Body)), params["boundary"])
	form, err := r.ReadForm(1 << 20)
	require.NoError(t, err)

	// array values become repeated docs[] parts, each with its own filename
	require.Len(t, form.File["docs[]"], 2)
	assert.Equal(t, "a.txt", form.File["docs[]"][0].Filename)
	assert.Equal(t, "b.csv", form.File["docs[]"][1].Filename)
	assert.Equal(t, "text/csv", form.File["docs[]"][1].Header.Get("Content-Type"))
}

func TestBuildBodyWinsOverMultipart(t *testing.T) {
	out, err := Build(
		testApi("https://api.example.com"),
		testEndpoint("/mixed", "POST"),
		[]model.Parameter{
			param("item", "body", "string", true),
			param("doc", "formData", "file", false),
		},
		map[string]any{
			"item": "widget",
			"doc":  FileValue{Filename: "a.txt", Data: []byte("x")},
		},
	)
	require.NoError(t, err)

	// once body parameters appear, multipart is not produced
	assert.Equal(t, "application/json", out.ContentType)
	var body map[string]any
	require.NoError(t, json.Unmarshal(out.Body, &body))
	assert.Equal(t, "widget", body["item"])
}

func TestBuildNoBody(t *testing.T) {
	out, err := Build(
		testApi("https://api.example.com"),
		testEndpoint("/ping", "GET"),
		nil,
		map[string]any{"anything": "ignored"},
	)
	require.NoError(t, err)
	assert.Empty(t, out.Body)
	assert.Empty(t, out.ContentType)
	assert.Equal(t, http.MethodGet, out.Method)
}
