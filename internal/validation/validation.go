package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"antgiftbox/internal/models"
)

var validate = newValidator()

// Error is a user-facing validation failure. Handlers map it to a 400
// rather than a 500.
type Error struct {
	msg string
}

func (e *Error) Error() string { return e.msg }

func newError(format string, args ...any) error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}

var hhmmRegexp = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return hhmmRegexp.MatchString(fl.Field().String())
	})
	return v
}

// ApprovalPayload validates the form a parent submits when approving a link
// request. The mobile clients used to duplicate these checks per screen;
// this is the single authoritative set.
func ApprovalPayload(p *models.ParentApprovalPayload) error {
	if strings.TrimSpace(p.ConfirmedNickname) == "" {
		return newError("nickname is required")
	}
	if !p.ServiceTermsAgreed || !p.PrivacyAgreed {
		return newError("service terms and privacy consent are required")
	}
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return newError("invalid approval field %s", fieldName(verrs[0]))
		}
		return err
	}
	return nil
}

// Email validates an email address
func Email(email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return newError("invalid email address")
	}
	return nil
}

// Password enforces the minimum password policy
func Password(password string) error {
	if len(password) < 8 {
		return newError("password must be at least 8 characters")
	}
	return nil
}

// DisplayName validates a parent display name
func DisplayName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return newError("name is required")
	}
	if len(name) > 100 {
		return newError("name is too long")
	}
	return nil
}

// Nickname validates a child nickname submitted with a link request
func Nickname(nickname string) error {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return newError("nickname is required")
	}
	if len(nickname) > 50 {
		return newError("nickname is too long")
	}
	return nil
}

func fieldName(fe validator.FieldError) string {
	// StructField keeps the Go name; good enough for an API error code
	return fe.StructField()
}
