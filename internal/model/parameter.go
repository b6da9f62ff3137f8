package model

// ParamLocation is the resolved placement of a declared parameter in the
// outbound request. It is computed once when an endpoint's parameter list is
// loaded; the raw param_in/type strings are never re-interpreted per request.
type ParamLocation int

const (
	LocUnknown ParamLocation = iota
	LocPath
	LocQuery
	LocHeader
	LocBody
	LocFormFile  // multipart file part
	LocFormField // multipart text part
)

// ParseLocation maps the stored (param_in, type) pair to a ParamLocation.
// The file type only matters for formData parameters.
func ParseLocation(in, typ string) (ParamLocation, bool) {
	switch in {
	case "path":
		return LocPath, true
	case "query":
		return LocQuery, true
	case "header":
		return LocHeader, true
	case "body":
		return LocBody, true
	case "formData", "formdata":
		if typ == "file" {
			return LocFormFile, true
		}
		return LocFormField, true
	}
	return LocUnknown, false
}

// Parameter declares one field of an endpoint's contract. The declared set is
// the only contract the request builder trusts; undeclared caller fields are
// ignored.
type Parameter struct {
	ID         string `db:"id"`
	EndpointID string `db:"endpoint_id"`
	Name       string `db:"name"`
	ParamIn    string `db:"param_in"` // path|query|header|body|formData
	Type       string `db:"type"`     // string|number|boolean|file|...
	Required   bool   `db:"required"`

	// Location is resolved from ParamIn/Type at load time.
	Location ParamLocation `db:"-"`
}
