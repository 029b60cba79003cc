package codec

import (
	"github.com/beevik/etree"
	"go.uber.org/zap"

	"tenureconf/src/schema"
)

// ProfileSerializer reads and writes one profile subtree. Loading is a two
// pass operation: the cross-reference index is built first, then entities
// are constructed in an order that keeps dependency-bearing entities after
// the entities they reference.
type ProfileSerializer struct {
	entities *EntityRegistry
	columns  *ColumnRegistry
	logger   *zap.SugaredLogger
}

func NewProfileSerializer(entities *EntityRegistry, columns *ColumnRegistry,
	logger *zap.SugaredLogger) *ProfileSerializer {
	return &ProfileSerializer{
		entities: entities,
		columns:  columns,
		logger:   logger,
	}
}

type deferredEntity struct {
	el    *etree.Element
	codec EntityCodec
}

// Read builds a Profile from the profile element, or returns nil when the
// element carries no name.
func (s *ProfileSerializer) Read(el *etree.Element) *schema.Profile {
	name := el.SelectAttrValue(NameAttr, "")
	if name == "" {
		return nil
	}

	profile := schema.NewProfile(name)

	refs := BuildCrossRefIndex(el)

	// Value lists carry no dependencies, so they are realized before
	// anything that could reference them through a relation.
	if valueListsEl := el.SelectElement(ValueListGroupTag); valueListsEl != nil {
		if codec, ok := s.entities.HandlerByTag(ValueListGroupTag); ok {
			codec.Read(valueListsEl, profile, refs)
		}
	}

	// Association entities are realized from their declarations but are
	// not ordinary members of the entity collection.
	if associationsEl := el.SelectElement(AssociationGroupTag); associationsEl != nil {
		if codec, ok := s.entities.HandlerByTag(AssociationGroupTag); ok {
			for _, associationEl := range associationsEl.SelectElements(AssociationTag) {
				codec.Read(associationEl, profile, refs)
			}
		}
	}

	// First pass over entity declarations: construct independent entities
	// in document order and queue dependency-bearing ones.
	var deferred []deferredEntity
	for _, childEl := range el.ChildElements() {
		if childEl.Tag != EntityTag {
			continue
		}

		codec, ok := s.entities.HandlerByTag(childEl.Tag)
		if !ok {
			continue
		}

		if codec.HasDependency(childEl) {
			deferred = append(deferred, deferredEntity{el: childEl, codec: codec})
			continue
		}
		codec.Read(childEl, profile, refs)
	}

	// Second pass: deferred entities in their original relative order.
	// The deferral is single depth, so a dependency-bearing entity that
	// references another dependency-bearing entity declared later will
	// still fail to resolve its relation.
	for _, d := range deferred {
		d.codec.Read(d.el, profile, refs)
	}

	s.attachRelations(el, profile)

	if socialTenureEl := el.SelectElement(SocialTenureTag); socialTenureEl != nil {
		readSocialTenure(socialTenureEl, profile)
	}

	return profile
}

// attachRelations registers the profile's declared relations. Relations
// whose endpoints do not resolve are dropped with a diagnostic.
func (s *ProfileSerializer) attachRelations(el *etree.Element, profile *schema.Profile) {
	relationsEl := el.SelectElement(RelationGroupTag)
	if relationsEl == nil {
		return
	}

	for _, relationEl := range relationsEl.SelectElements(EntityRelationTag) {
		er := readEntityRelation(relationEl)
		if er.Name == "" {
			s.logger.Debugf("relation element in profile %s has no name, skipped", profile.Name)
			continue
		}

		er.Profile = profile
		if err := er.Valid(); err != nil {
			s.logger.Debugf("relation %s in profile %s dropped: %v", er.Name, profile.Name, err)
			continue
		}

		profile.AddRelation(er)
	}
}

// Write appends the profile subtree to the configuration element.
func (s *ProfileSerializer) Write(profile *schema.Profile, configEl *etree.Element) {
	el := configEl.CreateElement(ProfileTag)
	el.CreateAttr(NameAttr, profile.Name)

	for _, obj := range profile.EntityObjectList() {
		codec, ok := s.entities.Handler(obj.TypeInfo())
		if !ok {
			s.logger.Debugf("no entity handler registered for type %q, object %s not written",
				obj.TypeInfo(), obj.Object().ShortName)
			continue
		}
		codec.Write(obj, el)
	}

	if codec, ok := s.entities.Handler(schema.AssociationEntityTypeInfo); ok {
		for _, ae := range profile.AssociationList() {
			codec.Write(ae, el)
		}
	}

	relationsEl := el.CreateElement(RelationGroupTag)
	for _, er := range profile.RelationList() {
		writeEntityRelation(er, relationsEl)
	}

	writeSocialTenure(profile.SocialTenure, el)
}
