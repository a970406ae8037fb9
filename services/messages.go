package services

// Message keys shown to applicants. Values are looked up per language with
// English as the fallback.
const (
	MsgAgeNumbersOnly    = "ageNumbersOnly"
	MsgAgeLimit          = "ageLimit"
	MsgPhoneDigits       = "phoneNumberDigits"
	MsgPhoneLength       = "phoneNumberLength"
	MsgInvalidEmail      = "invalidEmail"
	MsgFillRequired      = "fillRequired"
	MsgCorrectErrors     = "correctErrors"
	MsgCompleteAllFields = "completeAllFields"
	MsgAlreadyMember     = "alreadyMember"
	MsgCheckStatus       = "checkStatus"
	MsgFileSizeLimit     = "fileSizeLimit"
	MsgAffidavit         = "affidavitRequired"
	MsgEmail             = "email"
	MsgPhoneNumber       = "phoneNumber"
	MsgDuplicateCheck    = "duplicateCheckFailed"
)

var catalog = map[string]map[string]string{
	"en": {
		MsgAgeNumbersOnly:    "Age must contain only numbers",
		MsgAgeLimit:          "Age must be 18 or above",
		MsgPhoneDigits:       "Phone number must contain only digits",
		MsgPhoneLength:       "Phone number must be exactly 10 digits",
		MsgInvalidEmail:      "Please enter a valid email address",
		MsgFillRequired:      "Please fill all required fields before proceeding.",
		MsgCorrectErrors:     "Please correct the errors before proceeding.",
		MsgCompleteAllFields: "Please complete all required fields correctly before submitting.",
		MsgAlreadyMember:     "You are already registered with this",
		MsgCheckStatus:       "Check Status With Your member ID is",
		MsgFileSizeLimit:     "Maximum file size: 4MB",
		MsgAffidavit:         "Please accept the affidavit before submitting.",
		MsgEmail:             "Email",
		MsgPhoneNumber:       "Phone Number",
		MsgDuplicateCheck:    "An error occurred while checking registration status. Please try again.",
	},
	"ml": {
		MsgAgeNumbersOnly:    "പ്രായത്തിൽ അക്കങ്ങൾ മാത്രമേ ഉൾപ്പെടുത്താവൂ",
		MsgAgeLimit:          "പ്രായം 18നോ അതിലധികമോ ആയിരിക്കണം",
		MsgPhoneDigits:       "ഫോൺ നമ്പറിൽ അക്കങ്ങൾ മാത്രമേ അനുവദനീയമാകൂ",
		MsgPhoneLength:       "ഫോൺ നമ്പർ കൃത്യം 10 അക്കങ്ങൾ ആയിരിക്കണം",
		MsgInvalidEmail:      "ദയവായി സാധുവായ ഇമെയിൽ വിലാസം നൽകുക",
		MsgFillRequired:      "മുന്നോട്ട് പോകുന്നതിനു മുമ്പ് എല്ലാ ആവശ്യമുള്ള ഫീൽഡുകളും പൂരിപ്പിക്കുക.",
		MsgCorrectErrors:     "മുന്നോട്ട് പോകുന്നതിനു മുമ്പ് പിശകുകൾ തിരുത്തുക.",
		MsgCompleteAllFields: "സമർപ്പിക്കുന്നതിന് മുമ്പ് എല്ലാ ആവശ്യമുള്ള ഫീൽഡുകളും ശരിയായി പൂരിപ്പിക്കുക.",
		MsgAlreadyMember:     "നിങ്ങൾ ഇതിൽ ഇതിനകം രജിസ്റ്റർ ചെയ്തിട്ടുണ്ട്",
		MsgCheckStatus:       "നിങ്ങളുടെ അംഗത്വ ഐഡി ഉപയോഗിച്ച് സ്റ്റാറ്റസ് പരിശോധിക്കുക",
		MsgFileSizeLimit:     "പരമാവധി ഫയൽ വലുപ്പം: 4MB",
	},
}

// Translate returns the message for key in lang, falling back to English.
func Translate(lang, key string) string {
	if msgs, ok := catalog[lang]; ok {
		if msg, ok := msgs[key]; ok {
			return msg
		}
	}
	if msg, ok := catalog["en"][key]; ok {
		return msg
	}
	return key
}

// NormalizeLang maps an Accept-Language style value to a catalog key.
func NormalizeLang(lang string) string {
	if len(lang) >= 2 {
		if _, ok := catalog[lang[:2]]; ok {
			return lang[:2]
		}
	}
	return "en"
}
