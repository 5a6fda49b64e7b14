package user

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	in "account_server/core/port/in"
)

const (
	passwordMinLen  = 8
	passwordMaxLen  = 100
	firstNameMaxLen = 30
	lastNameMaxLen  = 50
	zipcodeLen      = 8
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// FieldIssue is a single validation failure, addressed by field name.
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateCreate checks a creation payload and returns every violated
// field in one pass. An empty slice means the payload is valid.
func ValidateCreate(req *in.CreateUserRequest) []FieldIssue {
	var issues []FieldIssue

	if req.Email == "" {
		issues = append(issues, FieldIssue{"email", "email is required"})
	} else if !emailRegex.MatchString(req.Email) {
		issues = append(issues, FieldIssue{"email", "email must be a valid email address"})
	}

	if req.Password == "" {
		issues = append(issues, FieldIssue{"password", "password is required"})
	} else if issue := checkPassword(req.Password); issue != nil {
		issues = append(issues, *issue)
	}

	// Name limits count characters, not bytes; accented names must not
	// lose headroom to multibyte encoding.
	if req.FirstName == "" {
		issues = append(issues, FieldIssue{"first_name", "first name is required"})
	} else if utf8.RuneCountInString(req.FirstName) > firstNameMaxLen {
		issues = append(issues, FieldIssue{"first_name", fmt.Sprintf("first name must be at most %d characters", firstNameMaxLen)})
	}

	if req.LastName == "" {
		issues = append(issues, FieldIssue{"last_name", "last name is required"})
	} else if utf8.RuneCountInString(req.LastName) > lastNameMaxLen {
		issues = append(issues, FieldIssue{"last_name", fmt.Sprintf("last name must be at most %d characters", lastNameMaxLen)})
	}

	if req.Zipcode != "" && len(req.Zipcode) != zipcodeLen {
		issues = append(issues, FieldIssue{"zipcode", fmt.Sprintf("zipcode must be exactly %d characters", zipcodeLen)})
	}

	return issues
}

// ValidateUpdate checks an update payload. Fields are optional; the rules
// only apply to fields that are present. Emptiness of the whole payload is
// the service's concern, not the validator's.
func ValidateUpdate(req *in.UpdateUserRequest) []FieldIssue {
	var issues []FieldIssue

	if req.Email != nil && !emailRegex.MatchString(*req.Email) {
		issues = append(issues, FieldIssue{"email", "email must be a valid email address"})
	}

	if req.Password != nil {
		if issue := checkPassword(*req.Password); issue != nil {
			issues = append(issues, *issue)
		}
	}

	if req.FirstName != nil && (*req.FirstName == "" || utf8.RuneCountInString(*req.FirstName) > firstNameMaxLen) {
		issues = append(issues, FieldIssue{"first_name", fmt.Sprintf("first name must be between 1 and %d characters", firstNameMaxLen)})
	}

	if req.LastName != nil && (*req.LastName == "" || utf8.RuneCountInString(*req.LastName) > lastNameMaxLen) {
		issues = append(issues, FieldIssue{"last_name", fmt.Sprintf("last name must be between 1 and %d characters", lastNameMaxLen)})
	}

	if req.Zipcode != nil && len(*req.Zipcode) != zipcodeLen {
		issues = append(issues, FieldIssue{"zipcode", fmt.Sprintf("zipcode must be exactly %d characters", zipcodeLen)})
	}

	return issues
}

func checkPassword(password string) *FieldIssue {
	if len(password) < passwordMinLen || len(password) > passwordMaxLen {
		return &FieldIssue{"password", fmt.Sprintf("password must be between %d and %d characters", passwordMinLen, passwordMaxLen)}
	}
	return nil
}
