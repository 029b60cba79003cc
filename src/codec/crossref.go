package codec

import "github.com/beevik/etree"

// CrossRefIndex holds the name-keyed association and relation declarations
// of a single profile subtree. It is built once per profile, before any
// entity is constructed, so that columns can resolve either table by name
// even when the declaring element has not been visited yet.
type CrossRefIndex struct {
	Associations map[string]*etree.Element
	Relations    map[string]*etree.Element
}

// BuildCrossRefIndex scans the profile element and indexes its association
// and relation declarations. Declarations without a name attribute are
// skipped.
func BuildCrossRefIndex(profileEl *etree.Element) *CrossRefIndex {
	index := &CrossRefIndex{
		Associations: make(map[string]*etree.Element),
		Relations:    make(map[string]*etree.Element),
	}

	indexGroup(profileEl, AssociationGroupTag, index.Associations)
	indexGroup(profileEl, RelationGroupTag, index.Relations)

	return index
}

func indexGroup(profileEl *etree.Element, groupTag string, collection map[string]*etree.Element) {
	groupEl := profileEl.SelectElement(groupTag)
	if groupEl == nil {
		return
	}

	for _, el := range groupEl.ChildElements() {
		name := el.SelectAttrValue(NameAttr, "")
		if name == "" {
			continue
		}
		collection[name] = el
	}
}
