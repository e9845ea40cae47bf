package models

// Notice kinds. A toast fades out; an alert stays until dismissed.
const (
	NoticeToast = "toast"
	NoticeAlert = "alert"
)

// Notice is a one-shot message shown on the next page render.
type Notice struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}
