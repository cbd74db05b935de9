package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/motorhome-rental/internal/domain"
)

// pathUUID binds a required {name} path segment as a UUID.
func pathUUID(r *http.Request, name string) (openapi_types.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return openapi_types.UUID{}, domain.NewValidationError(domain.CodeInvalidParameters, "%s must be a UUID", name)
	}
	return id, nil
}

// queryParam binds an optional form-style query parameter into dest, which
// must be a pointer to a pointer. Absent or empty parameters leave *dest nil.
func queryParam(r *http.Request, name string, dest any) error {
	if r.URL.Query().Get(name) == "" {
		return nil
	}
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest); err != nil {
		return domain.NewValidationError(domain.CodeInvalidParameters, "invalid %s parameter", name)
	}
	return nil
}

// pageParams reads ?page= and ?limit= (defaults: page=1, limit=20, max=100).
func pageParams(r *http.Request) (domain.PaginationParams, error) {
	var page, limit *int
	if err := queryParam(r, "page", &page); err != nil {
		return domain.PaginationParams{}, err
	}
	if err := queryParam(r, "limit", &limit); err != nil {
		return domain.PaginationParams{}, err
	}
	return domain.NewPaginationParams(page, limit), nil
}
