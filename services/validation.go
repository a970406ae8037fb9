package services

import (
	"regexp"
	"strconv"
	"strings"
)

// Registration form field names, shared with the web client.
const (
	FieldFullName        = "fullName"
	FieldFatherName      = "fatherName"
	FieldAge             = "age"
	FieldGender          = "gender"
	FieldAddress         = "address"
	FieldBloodGroup      = "bloodGroup"
	FieldHobbies         = "hobbies"
	FieldPhoneNumber     = "phoneNumber"
	FieldEmail           = "email"
	FieldEducation       = "education"
	FieldJob             = "job"
	FieldNomineeName     = "nomineeName"
	FieldHasCriminalCase = "hasCriminalCase"
	FieldIsClubMember    = "isClubMember"
	FieldPhoto           = "photo"
	FieldSignature       = "signature"
)

// MaxAttachmentSize is the upload limit for the photo and the signature.
const MaxAttachmentSize = 4 * 1024 * 1024

var (
	digitsOnly   = regexp.MustCompile(`^\d*$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

var upperCased = map[string]bool{
	FieldFullName:    true,
	FieldFatherName:  true,
	FieldAddress:     true,
	FieldNomineeName: true,
	FieldHobbies:     true,
	FieldEducation:   true,
	FieldJob:         true,
}

var stepFields = map[int][]string{
	1: {FieldFullName, FieldFatherName, FieldAge, FieldGender, FieldAddress, FieldBloodGroup, FieldHobbies},
	2: {FieldPhoneNumber, FieldEmail, FieldEducation, FieldJob, FieldNomineeName},
	3: {FieldHasCriminalCase, FieldPhoto, FieldSignature, FieldIsClubMember},
}

// submitFields are re-checked on final submission.
var submitFields = []string{
	FieldFullName, FieldAddress, FieldAge, FieldGender, FieldFatherName, FieldPhoneNumber,
	FieldEmail, FieldEducation, FieldBloodGroup, FieldIsClubMember, FieldHasCriminalCase,
	FieldPhoto, FieldSignature,
}

// StepFields returns the fields required to leave the given step.
func StepFields(step int) []string {
	return stepFields[step]
}

// IsFormField reports whether name is a text field of the registration form.
func IsFormField(name string) bool {
	for step := 1; step <= 3; step++ {
		for _, f := range stepFields[step] {
			if f == name && f != FieldPhoto && f != FieldSignature {
				return true
			}
		}
	}
	return false
}

// ValidateField applies the per-keystroke rules to one field. It returns the
// value to store (uppercased for free-text fields) and an error message, empty
// when the value is acceptable. An empty value is never an error here;
// required-ness is checked when leaving a step.
func ValidateField(lang, field, raw string) (string, string) {
	if upperCased[field] {
		return strings.ToUpper(raw), ""
	}

	switch field {
	case FieldAge:
		if !digitsOnly.MatchString(raw) {
			return raw, Translate(lang, MsgAgeNumbersOnly)
		}
		if raw != "" {
			// digits-only input fails Atoi only on overflow, which is >= 18
			age, err := strconv.Atoi(raw)
			if err == nil && age < 18 {
				return raw, Translate(lang, MsgAgeLimit)
			}
		}
	case FieldPhoneNumber:
		if !digitsOnly.MatchString(raw) {
			return raw, Translate(lang, MsgPhoneDigits)
		}
		if raw != "" && len(raw) != 10 {
			return raw, Translate(lang, MsgPhoneLength)
		}
	case FieldEmail:
		if raw != "" && !emailPattern.MatchString(raw) {
			return raw, Translate(lang, MsgInvalidEmail)
		}
	}
	return raw, ""
}
