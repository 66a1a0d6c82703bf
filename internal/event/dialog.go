package event

import "strings"

// DialogKind selects the buttons offered by a dialog.
type DialogKind uint8

const (
	DialogOk DialogKind = iota
	DialogYesNo
	DialogOkCancel
	DialogYesNoCancel
	DialogCancelRetryContinue
	DialogYesNoYesAllNoAll
)

// Response is the button a user picked.
type Response uint8

const (
	ResponseNo Response = iota
	ResponseYes
	ResponseYesAll
	ResponseNoAll
	ResponseCancel
	ResponseOk
	ResponseRetry
	ResponseContinue
)

var responseNames = [...]string{
	ResponseNo:       "No",
	ResponseYes:      "Yes",
	ResponseYesAll:   "YesAll",
	ResponseNoAll:    "NoAll",
	ResponseCancel:   "Cancel",
	ResponseOk:       "Ok",
	ResponseRetry:    "Retry",
	ResponseContinue: "Continue",
}

func (r Response) String() string {
	if int(r) < len(responseNames) {
		return responseNames[r]
	}
	return "Unknown"
}

// Choices lists the responses a dialog of kind k offers, in display order.
func (k DialogKind) Choices() []Response {
	switch k {
	case DialogYesNo:
		return []Response{ResponseYes, ResponseNo}
	case DialogOkCancel:
		return []Response{ResponseOk, ResponseCancel}
	case DialogYesNoCancel:
		return []Response{ResponseYes, ResponseNo, ResponseCancel}
	case DialogCancelRetryContinue:
		return []Response{ResponseCancel, ResponseRetry, ResponseContinue}
	case DialogYesNoYesAllNoAll:
		return []Response{ResponseYes, ResponseNo, ResponseYesAll, ResponseNoAll}
	default:
		return []Response{ResponseOk}
	}
}

// DefaultResponse is the answer used when nobody can be asked.
func (k DialogKind) DefaultResponse() Response {
	switch k {
	case DialogYesNo, DialogYesNoYesAllNoAll:
		return ResponseNo
	case DialogOkCancel, DialogYesNoCancel, DialogCancelRetryContinue:
		return ResponseCancel
	default:
		return ResponseOk
	}
}

// ParseDialogKind maps names such as "yesno" or "ok-cancel" onto a kind.
func ParseDialogKind(value string) (DialogKind, bool) {
	v := strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(value))
	switch v {
	case "ok", "":
		return DialogOk, true
	case "yesno":
		return DialogYesNo, true
	case "okcancel":
		return DialogOkCancel, true
	case "yesnocancel":
		return DialogYesNoCancel, true
	case "cancelretrycontinue":
		return DialogCancelRetryContinue, true
	case "yesnoyesallnoall":
		return DialogYesNoYesAllNoAll, true
	default:
		return DialogOk, false
	}
}
