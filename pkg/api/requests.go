package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// listingQuery is the query of GET /api/directoryListing/directory.
type listingQuery struct {
	Path     string `schema:"path" validate:"required"`
	Page     int    `schema:"page" validate:"min=1"`
	PageSize int    `schema:"pageSize" validate:"min=1"`
}

// searchQuery is the query of GET /api/search/directory.
type searchQuery struct {
	Path  string `schema:"path" validate:"required"`
	Term  string `schema:"searchTerm" validate:"required"`
	Limit int    `schema:"limit" validate:"min=1"`
}

// quickSearchQuery is the query of GET /api/search/quick.
type quickSearchQuery struct {
	Path  string `schema:"path" validate:"required"`
	Term  string `schema:"searchText" validate:"required"`
	Limit int    `schema:"limit" validate:"min=1"`
}

// recentQuery is the query of GET /api/recent.
type recentQuery struct {
	Limit int `schema:"limit" validate:"min=0"`
}

// addBookmarkRequest is the body of POST /api/bookmarks/add.
type addBookmarkRequest struct {
	Name string `json:"name" validate:"required"`
	Path string `json:"path" validate:"required"`
}

// requestDecoder decodes and validates query strings and JSON bodies.
type requestDecoder struct {
	schema   *schema.Decoder
	validate *validator.Validate
}

func newRequestDecoder() *requestDecoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)

	return &requestDecoder{
		schema:   dec,
		validate: validator.New(),
	}
}

// query decodes values into dst, whose fields must already hold the
// defaults, and validates the result.
func (d *requestDecoder) query(dst any, values url.Values) error {
	if err := d.schema.Decode(dst, values); err != nil {
		return describeSchemaError(err)
	}
	return d.check(dst)
}

// body decodes a JSON request body into dst and validates the result.
func (d *requestDecoder) body(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return d.check(dst)
}

func (d *requestDecoder) check(dst any) error {
	if err := d.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return describeFieldError(verrs[0])
		}
		return err
	}
	return nil
}

// describeSchemaError turns a gorilla/schema error into a client message.
func describeSchemaError(err error) error {
	var multi schema.MultiError
	if errors.As(err, &multi) {
		for key, fieldErr := range multi {
			var conv schema.ConversionError
			if errors.As(fieldErr, &conv) {
				return fmt.Errorf("%s must be an integer", key)
			}
			return fmt.Errorf("%s: %v", key, fieldErr)
		}
	}
	return err
}

// describeFieldError renders the first validation failure the way clients
// of the original API expect.
func describeFieldError(fe validator.FieldError) error {
	switch fe.StructField() {
	case "Path":
		return errors.New("Directory path is required")
	case "Term":
		return errors.New("Search term is required")
	case "Name":
		return errors.New("Name and path are required")
	case "Page":
		return errors.New("Page must be a positive integer")
	case "PageSize":
		return errors.New("Page size must be a positive integer")
	case "Limit":
		return errors.New("Limit must be a positive integer")
	default:
		return fmt.Errorf("%s: validation failed on '%s'", fe.Field(), fe.Tag())
	}
}
