package handler

import (
	"errors"
	"strings"

	"neuroteach/shared/models"

	"github.com/go-playground/validator/v10"
)

type loginForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
}

type registerForm struct {
	Name            string `form:"name" binding:"required"`
	Email           string `form:"email" binding:"required,email"`
	Password        string `form:"password" binding:"required,min=6"`
	ConfirmPassword string `form:"confirm_password" binding:"required,eqfield=Password"`
}

type lessonForm struct {
	Subject  string `form:"subject" binding:"required"`
	Topic    string `form:"topic" binding:"required"`
	Level    string `form:"level" binding:"required"`
	Duration int    `form:"duration" binding:"required,min=5,max=120"`
	Style    string `form:"style" binding:"required"`
}

func defaultLessonForm() lessonForm {
	return lessonForm{
		Subject:  string(models.SubjectMathematics),
		Duration: 30,
		Style:    string(models.StyleExamples),
	}
}

func (f lessonForm) request() models.LessonRequest {
	return models.LessonRequest{
		Subject:  models.Subject(f.Subject),
		Topic:    strings.TrimSpace(f.Topic),
		Level:    strings.TrimSpace(f.Level),
		Duration: f.Duration,
		Style:    models.LessonStyle(f.Style),
	}
}

const msgFillRequired = "Please fill in all required fields"

// validationMessage переводит первую ошибку валидации в текст toast.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return msgFillRequired
	}
	fe := verrs[0]
	switch fe.Field() + "." + fe.Tag() {
	case "Email.email":
		return "Please enter a valid email address"
	case "Password.min":
		return "Password must be at least 6 characters"
	case "ConfirmPassword.eqfield":
		return "Passwords do not match"
	case "Duration.min", "Duration.max":
		return "Duration must be between 5 and 120 minutes"
	default:
		return msgFillRequired
	}
}
