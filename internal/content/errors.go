package content

import "fmt"

// FrontmatterError reports malformed or missing front-matter fields.
type FrontmatterError struct {
	Path   string
	Field  string
	Reason string
}

func (e *FrontmatterError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: front matter: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("%s: front matter field %q: %s", e.Path, e.Field, e.Reason)
}
