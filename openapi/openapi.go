// Package openapi builds the API description served under /docs. Routes are
// documented next to their registration.
package openapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"
	"github.com/labstack/echo/v4"
	"gopkg.in/yaml.v3"
)

const BearerScheme = "bearerAuth"

type OpenAPI struct {
	spec *openapi3.T
	mu   sync.RWMutex
}

func New(title, version string) *OpenAPI {
	return &OpenAPI{
		spec: &openapi3.T{
			OpenAPI: "3.0.3",
			Info: &openapi3.Info{
				Title:   title,
				Version: version,
			},
			Paths: openapi3.NewPaths(),
			Components: &openapi3.Components{
				Schemas:         openapi3.Schemas{},
				SecuritySchemes: openapi3.SecuritySchemes{},
			},
		},
	}
}

func (o *OpenAPI) Description(desc string) *OpenAPI {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.spec.Info.Description = desc
	return o
}

func (o *OpenAPI) Tag(name, description string) *OpenAPI {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.spec.Tags = append(o.spec.Tags, &openapi3.Tag{Name: name, Description: description})
	return o
}

func (o *OpenAPI) BearerAuth(description string) *OpenAPI {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.spec.Components.SecuritySchemes[BearerScheme] = &openapi3.SecuritySchemeRef{
		Value: openapi3.NewJWTSecurityScheme().WithDescription(description),
	}
	return o
}

// Document starts describing the operation served at an echo route path.
func (o *OpenAPI) Document(method, path string) *RouteBuilder {
	rb := &RouteBuilder{
		api:    o,
		method: strings.ToUpper(method),
		path:   echoPathToOpenAPI(path),
		op:     openapi3.NewOperation(),
	}
	rb.op.Responses = openapi3.NewResponsesWithCapacity(0)
	for _, segment := range strings.Split(path, "/") {
		if name, ok := strings.CutPrefix(segment, ":"); ok {
			rb.PathParam(name, "")
		}
	}
	return rb
}

func (o *OpenAPI) Spec() *openapi3.T {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.spec
}

func (o *OpenAPI) Validate(ctx context.Context) error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.spec.Validate(ctx)
}

func (o *OpenAPI) JSON() ([]byte, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return json.MarshalIndent(o.spec, "", "  ")
}

// YAML goes through JSON so that kin-openapi's marshalling rules apply.
func (o *OpenAPI) YAML() ([]byte, error) {
	raw, err := o.JSON()
	if err != nil {
		return nil, err
	}

	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}

func (o *OpenAPI) JSONHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		body, err := o.JSON()
		if err != nil {
			return err
		}
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, body)
	}
}

func (o *OpenAPI) YAMLHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		body, err := o.YAML()
		if err != nil {
			return err
		}
		return c.Blob(http.StatusOK, "application/yaml", body)
	}
}

func (o *OpenAPI) addOperation(method, path string, op *openapi3.Operation) {
	o.mu.Lock()
	defer o.mu.Unlock()

	item := o.spec.Paths.Value(path)
	if item == nil {
		item = &openapi3.PathItem{}
		o.spec.Paths.Set(path, item)
	}
	item.SetOperation(method, op)
}

func (o *OpenAPI) schemaFor(example any) *openapi3.SchemaRef {
	o.mu.Lock()
	defer o.mu.Unlock()

	ref, err := openapi3gen.NewSchemaRefForValue(example, o.spec.Components.Schemas)
	if err != nil {
		return openapi3.NewObjectSchema().NewRef()
	}
	return ref
}

// echoPathToOpenAPI turns /post/:id into /post/{id}.
func echoPathToOpenAPI(path string) string {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		if name, ok := strings.CutPrefix(segment, ":"); ok {
			segments[i] = "{" + name + "}"
		}
	}
	return strings.Join(segments, "/")
}
