package codec

import (
	"github.com/beevik/etree"

	"tenureconf/src/schema"
)

// readEntityRelation builds an EntityRelation value from its declaration
// element. The relation is not validated here; callers decide whether an
// unresolvable relation is an omission or a skip.
func readEntityRelation(el *etree.Element) *schema.EntityRelation {
	return &schema.EntityRelation{
		Name:         el.SelectAttrValue(NameAttr, ""),
		Parent:       el.SelectAttrValue(ParentAttr, ""),
		ParentColumn: el.SelectAttrValue(ParentColumnAttr, ""),
		Child:        el.SelectAttrValue(ChildAttr, ""),
		ChildColumn:  el.SelectAttrValue(ChildColumnAttr, ""),
	}
}

func writeEntityRelation(er *schema.EntityRelation, parentEl *etree.Element) {
	el := parentEl.CreateElement(EntityRelationTag)
	el.CreateAttr(NameAttr, er.Name)
	el.CreateAttr(ParentAttr, er.Parent)
	el.CreateAttr(ParentColumnAttr, er.ParentColumn)
	el.CreateAttr(ChildAttr, er.Child)
	el.CreateAttr(ChildColumnAttr, er.ChildColumn)
}

// readSocialTenure sets the social tenure references on the profile.
// Attributes are only applied when non-empty.
func readSocialTenure(el *etree.Element, profile *schema.Profile) {
	if party := el.SelectAttrValue(PartyAttr, ""); party != "" {
		profile.SocialTenure.Party = party
	}
	if spatialUnit := el.SelectAttrValue(SpatialUnitAttr, ""); spatialUnit != "" {
		profile.SocialTenure.SpatialUnit = spatialUnit
	}
	if tenureTypes := el.SelectAttrValue(TenureTypeListAttr, ""); tenureTypes != "" {
		profile.SocialTenure.TenureTypeList = tenureTypes
	}
}

func writeSocialTenure(st *schema.SocialTenure, parentEl *etree.Element) {
	el := parentEl.CreateElement(SocialTenureTag)
	el.CreateAttr(PartyAttr, st.Party)
	el.CreateAttr(SpatialUnitAttr, st.SpatialUnit)
	el.CreateAttr(TenureTypeListAttr, st.TenureTypeList)
}
