package user

import (
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Umairism/Teachers-Club/core"
)

func newValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator, _ := ut.New(en.New()).GetTranslator("en")
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate, translator
}

func TestRegistration_Validate(t *testing.T) {
	validate, translator := newValidator()
	commonPasswords = []string{"p@ssw0rd!"}
	defer func() { commonPasswords = make([]string, 0) }()

	valid := func(pwd string) Registration {
		return Registration{
			Name:            "Alice",
			Email:           "alice@school.edu",
			Password:        pwd,
			PasswordConfirm: pwd,
			InviteCode:      "STUDENT2025",
		}
	}

	tests := []struct {
		name    string
		reg     Registration
		wantErr map[string]string // {field: message}
	}{
		{name: "valid", reg: valid("Xy7#Qw9$Zk2!")},
		{name: "too short", reg: valid("Xy7#Qw"), wantErr: map[string]string{"password": pwdMinLenText}},
		{name: "whitespace", reg: valid("Xy7# Qw9$Zk"), wantErr: map[string]string{"password": pwdNoSpaceText}},
		{name: "all numeric", reg: valid("1234567890"), wantErr: map[string]string{"password": pwdNotAllNumText}},
		{name: "not complex", reg: valid("xyqwzkxyqwzk"), wantErr: map[string]string{"password": pwdComplexityText}},
		{
			name: "similar to name",
			reg: Registration{
				Name: "Alice Cooper", Email: "ac@school.edu", Password: "Alicecooper1!", PasswordConfirm: "Alicecooper1!", InviteCode: "X",
			},
			wantErr: map[string]string{"password": pwdAttrSimText},
		},
		{name: "common", reg: valid("P@ssw0rd!"), wantErr: map[string]string{"password": pwdNoCommonText}},
		{
			name: "confirmation mismatch",
			reg: Registration{
				Name: "Alice", Email: "alice@school.edu", Password: "Xy7#Qw9$Zk2!", PasswordConfirm: "Xy7#Qw9$Zk2?", InviteCode: "X",
			},
			wantErr: map[string]string{"password_confirm": "password_confirm must be equal to Password"},
		},
		{
			name:    "missing fields",
			reg:     Registration{},
			wantErr: map[string]string{"name": requiredText, "email": requiredText, "password": requiredText, "password_confirm": requiredText, "invite_code": requiredText},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.reg.Validate(validate)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			vErrs, ok := err.(validator.ValidationErrors)
			require.True(t, ok, "error is %T", err)
			got := make(map[string]string, len(vErrs))
			for _, fe := range vErrs {
				got[fe.Field()] = fe.Translate(translator)
			}
			assert.Equal(t, tt.wantErr, got)
		})
	}
}

const requiredText = "this field is required"

func TestNewUser_Validate_role(t *testing.T) {
	validate, _ := newValidator()

	nu := NewUser{
		Name:            "Alice",
		Email:           " Alice@School.EDU ",
		Password:        "Xy7#Qw9$Zk2!",
		PasswordConfirm: "Xy7#Qw9$Zk2!",
		Role:            " Teacher ",
	}
	require.NoError(t, nu.Validate(validate))
	assert.Equal(t, "alice@school.edu", nu.Email)
	assert.Equal(t, RoleTeacher, nu.Role)

	nu.Role = "janitor"
	assert.Error(t, nu.Validate(validate))
}

func TestUpdateUser_changesPrivileges(t *testing.T) {
	orig := User{Email: "alice@school.edu", Role: RoleTeacher, IsActive: true}
	bPtr := func(b bool) *bool { return &b }
	sPtr := func(s string) *string { return &s }

	tests := []struct {
		name string
		uu   UpdateUser
		want bool
	}{
		{name: "profile only", uu: UpdateUser{Name: "Al", Bio: sPtr("hi"), ProfilePictureURL: sPtr("/media/a.png")}},
		{name: "same values", uu: UpdateUser{Email: orig.Email, Role: orig.Role, IsActive: bPtr(true)}},
		{name: "role", uu: UpdateUser{Role: RoleAdmin}, want: true},
		{name: "email", uu: UpdateUser{Email: "other@school.edu"}, want: true},
		{name: "active flag", uu: UpdateUser{IsActive: bPtr(false)}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.uu.changesPrivileges(orig))
		})
	}
}
