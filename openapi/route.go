package openapi

import (
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

type RouteBuilder struct {
	api    *OpenAPI
	method string
	path   string
	op     *openapi3.Operation
}

func (rb *RouteBuilder) Summary(summary string) *RouteBuilder {
	rb.op.Summary = summary
	return rb
}

func (rb *RouteBuilder) Description(description string) *RouteBuilder {
	rb.op.Description = description
	return rb
}

func (rb *RouteBuilder) Tags(tags ...string) *RouteBuilder {
	rb.op.Tags = append(rb.op.Tags, tags...)
	return rb
}

// PathParam documents a path parameter. Parameters named in the route path
// are added automatically; calling this again only sets the description.
func (rb *RouteBuilder) PathParam(name, description string) *RouteBuilder {
	for _, p := range rb.op.Parameters {
		if p.Value != nil && p.Value.In == openapi3.ParameterInPath && p.Value.Name == name {
			p.Value.Description = description
			return rb
		}
	}
	param := openapi3.NewPathParameter(name).
		WithDescription(description).
		WithSchema(openapi3.NewStringSchema())
	rb.op.AddParameter(param)
	return rb
}

func (rb *RouteBuilder) QueryParam(name, description string) *RouteBuilder {
	param := openapi3.NewQueryParameter(name).
		WithDescription(description).
		WithSchema(openapi3.NewStringSchema())
	rb.op.AddParameter(param)
	return rb
}

func (rb *RouteBuilder) Body(example any, description string) *RouteBuilder {
	body := openapi3.NewRequestBody().
		WithDescription(description).
		WithRequired(true).
		WithJSONSchemaRef(rb.api.schemaFor(example))
	rb.op.RequestBody = &openapi3.RequestBodyRef{Value: body}
	return rb
}

// Response documents a status code. A nil example documents a response
// without a body.
func (rb *RouteBuilder) Response(statusCode int, example any, description string) *RouteBuilder {
	if description == "" {
		description = http.StatusText(statusCode)
	}

	response := openapi3.NewResponse().WithDescription(description)
	if example != nil {
		response.WithJSONSchemaRef(rb.api.schemaFor(example))
	}
	rb.op.AddResponse(statusCode, response)
	return rb
}

func (rb *RouteBuilder) Security() *RouteBuilder {
	requirement := openapi3.NewSecurityRequirement().Authenticate(BearerScheme)
	rb.op.Security = openapi3.NewSecurityRequirements().With(requirement)
	return rb
}

func (rb *RouteBuilder) Build() {
	if rb.op.OperationID == "" {
		rb.op.OperationID = operationID(rb.method, rb.path)
	}
	rb.api.addOperation(rb.method, rb.path, rb.op)
}

func operationID(method, path string) string {
	id := []byte(strings.ToLower(method))
	upper := true
	for i := 0; i < len(path); i++ {
		ch := path[i]
		switch {
		case ch == '/' || ch == '-' || ch == '{' || ch == '}':
			upper = true
		case upper && ch >= 'a' && ch <= 'z':
			id = append(id, ch-'a'+'A')
			upper = false
		default:
			id = append(id, ch)
			upper = false
		}
	}
	return string(id)
}
