package checkout

import (
	"reflect"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const minReferenceLength = 5

// CustomerForm 結帳時填寫的客戶資料
type CustomerForm struct {
	FirstName        string `json:"first_name" validate:"required,min=2"`
	LastName         string `json:"last_name" validate:"required,min=2"`
	Email            string `json:"email" validate:"required,email"`
	Birthdate        string `json:"birthdate" validate:"required"`
	PaymentReference string `json:"payment_reference"`
}

// FullName 訂位紀錄上的 customer_name
func (f CustomerForm) FullName() string {
	return strings.TrimSpace(f.FirstName + " " + f.LastName)
}

// ValidationErrors 欄位名稱 -> 錯誤訊息
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+v[field])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var messages = map[string]string{
	"first_name":        "First name must be at least 2 characters.",
	"last_name":         "Last name must be at least 2 characters.",
	"email":             "Please enter a valid email address.",
	"birthdate":         "Please enter your birthdate.",
	"payment_reference": "Payment reference must be at least 5 characters.",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// 錯誤以 json 欄位名稱回傳
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate 檢查表單，reference 為實際會寫入訂位的付款參考碼
func (f CustomerForm) Validate(reference string) ValidationErrors {
	errs := ValidationErrors{}

	if err := validate.Struct(f); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrs {
				errs[fe.Field()] = messages[fe.Field()]
			}
		} else {
			errs["form"] = err.Error()
		}
	}

	if utf8.RuneCountInString(reference) < minReferenceLength {
		errs["payment_reference"] = messages["payment_reference"]
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// DeriveReference 由姓名與生日產生付款參考碼：去除空白，生日只保留數字。
// 任一欄位為空時回傳空字串。
func DeriveReference(firstName, lastName, birthdate string) string {
	if firstName == "" || lastName == "" || birthdate == "" {
		return ""
	}

	var b strings.Builder
	for _, r := range firstName + lastName {
		if !unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	for _, r := range birthdate {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
