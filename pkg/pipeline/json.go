package pipeline

import (
	"bytes"

	"github.com/matzehuels/critpath/pkg/project"
)

func marshalView(v project.NetworkView) ([]byte, error) {
	var buf bytes.Buffer
	if err := project.WriteJSON(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
