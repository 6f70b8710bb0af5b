// Package bind decodes and validates JSON request bodies
package bind

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"

	perr "equilex/internal/platform/errors"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entrans "github.com/go-playground/validator/v10/translations/en"
)

// ValidatorSvc bundles a validator with an English translator
type ValidatorSvc struct {
	V *validator.Validate
	T ut.Translator
}

var (
	vOnce sync.Once
	vSvc  *ValidatorSvc
)

// Validator returns the process-wide validator singleton
func Validator() *ValidatorSvc {
	vOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")
		_ = entrans.RegisterDefaultTranslations(v, trans)

		vSvc = &ValidatorSvc{V: v, T: trans}
	})
	return vSvc
}

// ParseJSON decodes r's body into T, rejects unknown fields and trailing
// garbage, then runs struct validation. Empty bodies are tolerated for
// methods that conventionally have none
func ParseJSON[T any](r *http.Request) (T, error) {
	var out T

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return out, perr.JSONErrf("read body: %v", err)
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		switch r.Method {
		case http.MethodGet, http.MethodDelete, http.MethodHead, http.MethodOptions:
			return out, nil
		default:
			return out, perr.JSONErrf("empty request body")
		}
	}

	dec := json.NewDecoder(strings.NewReader(string(body)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return out, perr.JSONErrf("invalid JSON: %v", err)
	}
	if dec.More() {
		return out, perr.JSONErrf("unexpected trailing data in request body")
	}

	if err := Validator().V.Struct(out); err != nil {
		field, msg := ValidationFieldAndMessage(err)
		return out, perr.WithField(perr.Validationf("%s", msg), field)
	}
	return out, nil
}

// ValidationFieldAndMessage extracts the first failing field and its
// translated message from a validator error
func ValidationFieldAndMessage(err error) (field, msg string) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fe.Field(), fe.Translate(Validator().T)
	}
	return "", err.Error()
}
