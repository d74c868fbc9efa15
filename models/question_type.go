package models

import (
	"database/sql/driver"
	"fmt"
)

// QuestionType represents how a question is answered
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionTypeRating         QuestionType = "RATING"
	QuestionTypeText           QuestionType = "TEXT"
)

// String returns the string representation of the question type
func (t QuestionType) String() string {
	return string(t)
}

// Valid checks if the question type is valid
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeMultipleChoice, QuestionTypeRating, QuestionTypeText:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for QuestionType
func (t *QuestionType) Scan(value any) error {
	if value == nil {
		*t = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*t = QuestionType(v)
	case []byte:
		*t = QuestionType(string(v))
	default:
		return fmt.Errorf("cannot scan %T into QuestionType", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for QuestionType
func (t QuestionType) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid QuestionType: %s", t)
	}
	return string(t), nil
}

// UserRole identifies which kind of account owns a session
type UserRole string

const (
	UserRoleAdmin      UserRole = "ADMIN"
	UserRoleCompany    UserRole = "COMPANY"
	UserRoleResearcher UserRole = "RESEARCHER"
)

func (r UserRole) String() string {
	return string(r)
}

func (r UserRole) Valid() bool {
	switch r {
	case UserRoleAdmin, UserRoleCompany, UserRoleResearcher:
		return true
	default:
		return false
	}
}
