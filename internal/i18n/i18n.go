// Package i18n localizes user-visible API messages. English is the source
// language; message keys are the English strings themselves.
package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/pkordes/car-rental/internal/domain"
)

// Top-level error and status messages.
const (
	MsgCarNotFound        = "Car not found"
	MsgBookingNotFound    = "Booking not found"
	MsgNotFound           = "Resource not found"
	MsgInvalidData        = "Invalid data"
	MsgCarMissing         = "Car does not exist"
	MsgCarUnavailable     = "Car is not available"
	MsgUsernameTaken      = "Username already exists"
	MsgConflict           = "Resource already exists"
	MsgInvalidCredentials = "Invalid username or password"
	MsgLoginRequired      = "Authentication required"
	MsgAdminRequired      = "Administrator access required"
	MsgInvalidBody        = "Invalid request body"
	MsgBodyTooLarge       = "Request body too large"
	MsgInternal           = "Internal server error"
	MsgLoggedOut          = "Logged out"
)

// Field-level templates, keyed by validation rule. Each %s takes the next
// comma-separated value of the rule parameter.
var ruleMessages = map[string]string{
	"required":   "is required",
	"notblank":   "must not be blank",
	"min":        "must be at least %s",
	"max":        "must be at most %s",
	"gte":        "must be at least %s",
	"gt":         "must be greater than %s",
	"oneof":      "must be one of: %s",
	"caryear":    "year is out of range",
	"imageref":   "must be an image URL or path",
	"phone":      "invalid phone number",
	"gtfield":    "must be after the start date",
	"pricemin":   "must be at least %s",
	"transition": "cannot change status from %s to %s",
	"totalmax":   "is too large for the rental period",
}

var vietnamese = map[string]string{
	MsgCarNotFound:        "Không tìm thấy xe",
	MsgBookingNotFound:    "Không tìm thấy đơn thuê",
	MsgNotFound:           "Không tìm thấy dữ liệu",
	MsgInvalidData:        "Dữ liệu không hợp lệ",
	MsgCarMissing:         "Xe không tồn tại",
	MsgCarUnavailable:     "Xe không khả dụng",
	MsgUsernameTaken:      "Tên đăng nhập đã tồn tại",
	MsgConflict:           "Dữ liệu đã tồn tại",
	MsgInvalidCredentials: "Tên đăng nhập hoặc mật khẩu không đúng",
	MsgLoginRequired:      "Vui lòng đăng nhập",
	MsgAdminRequired:      "Yêu cầu quyền quản trị viên",
	MsgInvalidBody:        "Nội dung yêu cầu không hợp lệ",
	MsgBodyTooLarge:       "Nội dung yêu cầu quá lớn",
	MsgInternal:           "Lỗi máy chủ",
	MsgLoggedOut:          "Đã đăng xuất",

	"is required":                        "không được để trống",
	"must not be blank":                  "không được để trống",
	"must be at least %s":                "tối thiểu %s",
	"must be at most %s":                 "tối đa %s",
	"must be greater than %s":            "phải lớn hơn %s",
	"must be one of: %s":                 "phải là một trong: %s",
	"year is out of range":               "Năm không hợp lệ",
	"must be an image URL or path":       "URL hình ảnh không hợp lệ",
	"invalid phone number":               "Số điện thoại không hợp lệ",
	"must be after the start date":       "Ngày trả xe phải sau ngày nhận xe",
	"cannot change status from %s to %s": "không thể chuyển trạng thái từ %s sang %s",
	"is too large for the rental period": "quá lớn so với thời gian thuê",
}

// Supported lists the languages with a full catalog.
var Supported = []language.Tag{language.English, language.Vietnamese}

// Localizer picks a message printer for a request's Accept-Language header.
type Localizer struct {
	tags    []language.Tag
	matcher language.Matcher
	catalog *catalog.Builder
}

// New builds a Localizer whose fallback language is defaultLocale ("en" or "vi").
func New(defaultLocale string) (*Localizer, error) {
	def, err := language.Parse(defaultLocale)
	if err != nil {
		return nil, fmt.Errorf("i18n.New: parse %q: %w", defaultLocale, err)
	}
	base, _ := def.Base()

	// The matcher falls back to its first tag.
	tags := Supported
	if vi, _ := language.Vietnamese.Base(); base == vi {
		tags = []language.Tag{language.Vietnamese, language.English}
	} else if en, _ := language.English.Base(); base != en {
		return nil, fmt.Errorf("i18n.New: unsupported locale %q", defaultLocale)
	}

	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, vi := range vietnamese {
		if err := b.SetString(language.English, key, key); err != nil {
			return nil, fmt.Errorf("i18n.New: %w", err)
		}
		if err := b.SetString(language.Vietnamese, key, vi); err != nil {
			return nil, fmt.Errorf("i18n.New: %w", err)
		}
	}

	return &Localizer{tags: tags, matcher: language.NewMatcher(tags), catalog: b}, nil
}

// Printer returns a printer for the best match of an Accept-Language value.
// A missing or unparseable header yields the default language.
func (l *Localizer) Printer(acceptLanguage string) *message.Printer {
	return message.NewPrinter(l.Match(acceptLanguage), message.Catalog(l.catalog))
}

// Match returns the supported tag that best fits acceptLanguage.
func (l *Localizer) Match(acceptLanguage string) language.Tag {
	requested, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(requested) == 0 {
		return l.tags[0]
	}
	_, idx, conf := l.matcher.Match(requested...)
	if conf == language.No {
		return l.tags[0]
	}
	return l.tags[idx]
}

// FieldMessage renders one field error in the printer's language. Rules
// without a template keep the message the service produced.
func FieldMessage(p *message.Printer, fe domain.FieldError) string {
	tmpl, ok := ruleMessages[fe.Rule]
	if !ok {
		return fe.Message
	}
	n := strings.Count(tmpl, "%s")
	if n == 0 {
		return p.Sprintf(tmpl)
	}
	params := []string{fe.Param}
	if n > 1 {
		params = strings.SplitN(fe.Param, ",", n)
	}
	if len(params) != n {
		return fe.Message
	}
	args := make([]any, n)
	for i, v := range params {
		args[i] = v
	}
	return p.Sprintf(tmpl, args...)
}
