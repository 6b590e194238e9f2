package content

// Kind identifies which variant a Content value is.
type Kind string

const (
	KindTranscript Kind = "transcript"
	KindProblem    Kind = "problem"
	KindPage       Kind = "page"
)

// Content is one of *Transcript, *Problem or *Page. The set is closed:
// the unexported marker keeps other packages from adding variants.
type Content interface {
	Kind() Kind
	ToText() (string, error)
	ToMarkdown() (string, error)
	ToJSON() ([]byte, error)
	ToCSV() (string, error)

	sealed()
}
