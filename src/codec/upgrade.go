package codec

import (
	"errors"

	"github.com/beevik/etree"
)

// Upgrader migrates a configuration document written by an older build to
// the current document version. The codec only gates on the result; the
// migration itself lives with the implementer.
type Upgrader interface {
	Upgrade(doc *etree.Document) (*etree.Document, error)
}

// UnsupportedUpgrader rejects every document. It stands in until a real
// migration path for pre-current documents is wired in.
type UnsupportedUpgrader struct{}

func (UnsupportedUpgrader) Upgrade(*etree.Document) (*etree.Document, error) {
	return nil, errors.New("configuration upgrade is not supported")
}
