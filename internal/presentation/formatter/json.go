package formatter

import (
	"fmt"
	"io"

	"github.com/bytedance/sonic"
)

// RenderJSON writes any view payload as indented JSON.
func RenderJSON(w io.Writer, v interface{}) error {
	raw, err := sonic.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(raw))
	return err
}
