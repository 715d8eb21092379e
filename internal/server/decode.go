package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"familyhub/internal/store"
	"familyhub/pkg/types"

	"github.com/go-playground/form/v4"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	maxJSONBytes = 1 << 20

	defaultPageLimit = 100
	maxPageLimit     = 500
)

var (
	decoder  = newFormDecoder()
	validate = newValidator()
)

func newFormDecoder() *form.Decoder {
	d := form.NewDecoder()

	d.RegisterCustomTypeFunc(func(vals []string) (any, error) {
		return decimal.NewFromString(strings.TrimSpace(vals[0]))
	}, decimal.Decimal{})
	d.RegisterCustomTypeFunc(func(vals []string) (any, error) {
		return types.ParseDate(vals[0])
	}, types.Date{})

	registerOptional(d, func(s string) (string, error) { return s, nil })
	registerOptional(d, strconv.Atoi)
	registerOptional(d, strconv.ParseBool)
	registerOptional(d, func(s string) (decimal.Decimal, error) { return decimal.NewFromString(strings.TrimSpace(s)) })
	registerOptional(d, types.ParseDate)
	registerOptional(d, enum[types.Role])
	registerOptional(d, enum[types.PaymentMethod])
	registerOptional(d, enum[types.ContributionStatus])
	registerOptional(d, enum[types.SourceType])
	registerOptional(d, enum[types.EventStatus])
	registerOptional(d, enum[types.ParticipantStatus])
	registerOptional(d, enum[types.SessionStatus])

	return d
}

// registerOptional teaches the form decoder that a present but empty value
// clears the field.
func registerOptional[T any](d *form.Decoder, parse func(string) (T, error)) {
	d.RegisterCustomTypeFunc(func(vals []string) (any, error) {
		if len(vals) == 0 || strings.TrimSpace(vals[0]) == "" {
			return types.Null[T](), nil
		}
		v, err := parse(vals[0])
		if err != nil {
			return nil, err
		}
		return types.Some(v), nil
	}, types.Optional[T]{})
}

func enum[T ~string](s string) (T, error) {
	return T(strings.TrimSpace(s)), nil
}

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		f, _ := field.Interface().(decimal.Decimal).Float64()
		return f
	}, decimal.Decimal{})

	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		return field.Interface().(types.Date).Time
	}, types.Date{})

	return v
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// maxUploadBytes bounds a whole multipart request: the file plus form fields.
func (s *Service) maxUploadBytes() int64 {
	return s.config.MaxUploadMB<<20 + maxJSONBytes
}

// decodeInput reads a JSON body or, for multipart requests, the form fields
// into dst and validates the result.
func (s *Service) decodeInput(w http.ResponseWriter, r *http.Request, dst any) error {
	if isMultipart(r) {
		if err := s.parseMultipart(w, r); err != nil {
			return err
		}
		if err := decoder.Decode(dst, r.MultipartForm.Value); err != nil {
			return formError(err)
		}
	} else {
		body := http.MaxBytesReader(w, r.Body, maxJSONBytes)
		if err := json.NewDecoder(body).Decode(dst); err != nil {
			return types.NewValidationError("body", fmt.Sprintf("malformed JSON: %v", err))
		}
	}

	return validateInput(dst)
}

func (s *Service) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	if r.MultipartForm != nil {
		return nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes())
	if err := r.ParseMultipartForm(maxJSONBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return types.NewValidationError("file", fmt.Sprintf("must be smaller than %d MB", s.config.MaxUploadMB))
		}
		return types.NewValidationError("body", fmt.Sprintf("malformed multipart form: %v", err))
	}
	return nil
}

func validateInput(dst any) error {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &types.ValidationError{}
	for _, fe := range verrs {
		out.Add(fe.Field(), describe(fe))
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_unless":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gt":
		return "must be greater than " + fe.Param()
	case "min":
		if fe.Kind() == reflect.String {
			return "must be at least " + fe.Param() + " characters"
		}
		if fe.Kind() == reflect.Slice {
			return "must contain at least " + fe.Param() + " items"
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + fe.Param() + " characters"
		}
		if fe.Kind() == reflect.Slice {
			return "must contain at most " + fe.Param() + " items"
		}
		return "must be at most " + fe.Param()
	default:
		return "failed the " + fe.Tag() + " check"
	}
}

func formError(err error) error {
	var derrs form.DecodeErrors
	if !errors.As(err, &derrs) {
		return types.NewValidationError("body", err.Error())
	}

	out := &types.ValidationError{}
	for field, ferr := range derrs {
		out.Add(field, "is invalid: "+ferr.Error())
	}
	return out
}

// decodeQuery fills filter structs and the page window from the query string.
func decodeQuery(r *http.Request, filter any) (store.Page, error) {
	values := r.URL.Query()

	if filter != nil {
		if err := decoder.Decode(filter, values); err != nil {
			return store.Page{}, formError(err)
		}
	}

	var page store.Page
	if err := decoder.Decode(&page, values); err != nil {
		return store.Page{}, formError(err)
	}
	if page.Limit == 0 {
		page.Limit = defaultPageLimit
	}
	page.Limit = min(page.Limit, maxPageLimit)

	return page, nil
}

func pathID(r *http.Request, name string) (string, error) {
	id := strings.TrimSpace(r.PathValue(name))
	if id == "" {
		return "", required(name)
	}
	return id, nil
}
