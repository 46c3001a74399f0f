package view

// NoticeKind selects the notice styling.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a transient message shown to the user.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

// Success builds a success notice.
func Success(msg string) *Notice { return &Notice{Kind: NoticeSuccess, Message: msg} }

// Failure builds an error notice.
func Failure(msg string) *Notice { return &Notice{Kind: NoticeError, Message: msg} }
