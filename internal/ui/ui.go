// Package ui declares the capabilities the controllers need from a user
// interface, the table and detail models they produce, and State, an
// in-memory implementation shared by the web front-end and tests.
package ui

// Control identifies an action control that appears after a search.
type Control string

const (
	ControlExport       Control = "export"
	ControlDownloadPDF  Control = "download_pdf"
	ControlExtractTexts Control = "extract_texts"
)

// PostSearchControls are revealed by every successful search.
var PostSearchControls = []Control{ControlExport, ControlDownloadPDF, ControlExtractTexts}

// NoticeKind distinguishes input prompts from failure notifications.
type NoticeKind string

const (
	// NoticePrompt asks the user to fix their input.
	NoticePrompt NoticeKind = "prompt"
	// NoticeError reports a failed request.
	NoticeError NoticeKind = "error"
)

// Notice is a user-visible message.
type Notice struct {
	Kind    NoticeKind
	Message string
}

// BusyIndicator shows that a request is in flight.
type BusyIndicator interface {
	SetBusy(on bool)
}

// Notifier shows prompts and error notifications.
type Notifier interface {
	Notify(n Notice)
}

// TableView displays the result table. Each call replaces the previous table.
type TableView interface {
	ShowTable(t Table)
}

// ModalView displays the detail of one record.
type ModalView interface {
	ShowModal(d Detail)
	CloseModal()
}

// Controls toggles and reveals the post-search action controls.
type Controls interface {
	SetEnabled(c Control, enabled bool)
	Reveal(c Control)
}

// SuggestionBinder manages the autocomplete list on the keyword input.
type SuggestionBinder interface {
	DetachSuggestions()
	AttachSuggestions(items []string)
}

// Navigator points the hidden download target at a URL.
type Navigator interface {
	Navigate(url string)
}

// View is everything a front-end provides.
type View interface {
	BusyIndicator
	Notifier
	TableView
	ModalView
	Controls
	SuggestionBinder
	Navigator
}
