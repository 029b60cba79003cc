package schema

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"tenureconf/src/helpers"
)

// CurrentVersion is the configuration document version produced by this
// build. Documents carrying a lower version must be upgraded before they
// can be parsed.
const CurrentVersion = 1.2

// Type info tags for the entity-like objects a profile can own.
const (
	EntityTypeInfo            = "ENTITY"
	ValueListTypeInfo         = "VALUE_LIST"
	AssociationEntityTypeInfo = "ASSOCIATION_ENTITY"
)

type Configuration struct {
	// Version is the document format version of this configuration.
	Version float64

	// Profiles is a map of profile names to Profile objects.
	Profiles map[string]*Profile

	profileOrder []string
}

func NewConfiguration() *Configuration {
	return &Configuration{
		Version:  CurrentVersion,
		Profiles: make(map[string]*Profile),
	}
}

// IsNull reports whether the configuration holds no profiles.
func (c *Configuration) IsNull() bool {
	return len(c.Profiles) == 0
}

// Clear removes all profiles and resets the version to the current one.
func (c *Configuration) Clear() {
	c.Version = CurrentVersion
	c.Profiles = make(map[string]*Profile)
	c.profileOrder = nil
}

// AddProfile registers a profile under its name. A profile with the same
// name replaces the previous one.
func (c *Configuration) AddProfile(p *Profile) {
	if _, exists := c.Profiles[p.Name]; !exists {
		c.profileOrder = append(c.profileOrder, p.Name)
	}
	c.Profiles[p.Name] = p
	p.Configuration = c
}

// ProfileList returns the profiles in the order they were added.
func (c *Configuration) ProfileList() []*Profile {
	profiles := make([]*Profile, 0, len(c.profileOrder))
	for _, name := range c.profileOrder {
		profiles = append(profiles, c.Profiles[name])
	}
	return profiles
}

// EntityObject is implemented by every definable object a profile can own:
// plain entities, association entities and value lists.
type EntityObject interface {
	// Object returns the common entity state shared by all variants.
	Object() *Entity

	// TypeInfo returns the stable type tag of the variant.
	TypeInfo() string
}

type Profile struct {
	// ProfileID is the unique identifier for the profile.
	ProfileID string

	// Name is the name of the profile.
	Name string

	// Entities maps entity short names to the owned entity-like objects.
	Entities map[string]EntityObject

	// AssociationEntities maps short names to association entities. They
	// are kept apart from Entities so that cross-references can resolve
	// them without treating them as ordinary entities.
	AssociationEntities map[string]*AssociationEntity

	// Relations maps relation names to entity relations owned by the
	// profile.
	Relations map[string]*EntityRelation

	// SocialTenure holds the social tenure references of the profile.
	SocialTenure *SocialTenure

	Configuration *Configuration

	entityOrder      []string
	associationOrder []string
	relationOrder    []string
}

func NewProfile(name string) *Profile {
	return &Profile{
		ProfileID:           helpers.GenerateUUID(),
		Name:                name,
		Entities:            make(map[string]EntityObject),
		AssociationEntities: make(map[string]*AssociationEntity),
		Relations:           make(map[string]*EntityRelation),
		SocialTenure:        &SocialTenure{},
	}
}

// Prefix returns the table-name prefix derived from the profile name.
func (p *Profile) Prefix() string {
	return strings.ToLower(strings.ReplaceAll(p.Name, " ", "_"))
}

// AddEntityObject registers an entity-like object under its short name.
// A later object with the same short name silently replaces the earlier
// one.
func (p *Profile) AddEntityObject(obj EntityObject) {
	shortName := obj.Object().ShortName
	if _, exists := p.Entities[shortName]; !exists {
		p.entityOrder = append(p.entityOrder, shortName)
	}
	p.Entities[shortName] = obj
	obj.Object().Profile = p
}

// EntityObjectByName returns the entity-like object registered under the
// given short name, or nil.
func (p *Profile) EntityObjectByName(shortName string) EntityObject {
	return p.Entities[shortName]
}

// EntityObjectList returns the owned objects in the order they were added.
func (p *Profile) EntityObjectList() []EntityObject {
	objects := make([]EntityObject, 0, len(p.entityOrder))
	for _, name := range p.entityOrder {
		objects = append(objects, p.Entities[name])
	}
	return objects
}

// AddAssociation registers an association entity under its short name.
func (p *Profile) AddAssociation(ae *AssociationEntity) {
	if _, exists := p.AssociationEntities[ae.ShortName]; !exists {
		p.associationOrder = append(p.associationOrder, ae.ShortName)
	}
	p.AssociationEntities[ae.ShortName] = ae
	ae.Entity.Profile = p
}

// AssociationList returns the association entities in the order they were
// added.
func (p *Profile) AssociationList() []*AssociationEntity {
	associations := make([]*AssociationEntity, 0, len(p.associationOrder))
	for _, name := range p.associationOrder {
		associations = append(associations, p.AssociationEntities[name])
	}
	return associations
}

// AddRelation registers an entity relation under its name.
func (p *Profile) AddRelation(er *EntityRelation) {
	if _, exists := p.Relations[er.Name]; !exists {
		p.relationOrder = append(p.relationOrder, er.Name)
	}
	p.Relations[er.Name] = er
	er.Profile = p
}

// RelationList returns the relations in the order they were added.
func (p *Profile) RelationList() []*EntityRelation {
	relations := make([]*EntityRelation, 0, len(p.relationOrder))
	for _, name := range p.relationOrder {
		relations = append(relations, p.Relations[name])
	}
	return relations
}

type Entity struct {
	// EntityID is the unique identifier for the entity.
	EntityID string

	// ShortName is the stable identifier of the entity within its
	// profile. All cross-references target it.
	ShortName string

	// Name is the full derived name of the entity. It is informational
	// on the wire and recomputed on load.
	Name string

	// Description is the description of the entity.
	Description string

	IsGlobal          bool
	IsProxy           bool
	CreateID          bool
	SupportsDocuments bool
	IsAssociative     bool
	UserEditable      bool

	// Columns maps column names to the columns owned by the entity.
	Columns map[string]Column

	Profile *Profile

	columnOrder []string
}

func NewEntity(shortName string, profile *Profile) *Entity {
	e := &Entity{
		EntityID:     helpers.GenerateUUID(),
		ShortName:    shortName,
		UserEditable: true,
		Columns:      make(map[string]Column),
		Profile:      profile,
	}
	if profile != nil {
		e.Name = fmt.Sprintf("%s_%s", profile.Prefix(), strings.ToLower(shortName))
	}
	return e
}

func (e *Entity) Object() *Entity  { return e }
func (e *Entity) TypeInfo() string { return EntityTypeInfo }

// AddColumn registers a column under its name, preserving insertion order.
// A later column with the same name replaces the earlier one.
func (e *Entity) AddColumn(c Column) {
	name := c.Object().Name
	if _, exists := e.Columns[name]; !exists {
		e.columnOrder = append(e.columnOrder, name)
	}
	e.Columns[name] = c
	c.Object().Entity = e
}

// ColumnList returns the columns in the order they were added.
func (e *Entity) ColumnList() []Column {
	columns := make([]Column, 0, len(e.columnOrder))
	for _, name := range e.columnOrder {
		columns = append(columns, e.Columns[name])
	}
	return columns
}

type AssociationEntity struct {
	Entity

	// FirstParent is the short name of the first parent entity.
	FirstParent string

	// SecondParent is the short name of the second parent entity.
	SecondParent string
}

func NewAssociationEntity(shortName string, profile *Profile) *AssociationEntity {
	return &AssociationEntity{Entity: *NewEntity(shortName, profile)}
}

func (a *AssociationEntity) TypeInfo() string { return AssociationEntityTypeInfo }

type CodeValue struct {
	Code  string
	Value string
}

type ValueList struct {
	Entity

	// Values maps lookup values to their code/value pairs.
	Values map[string]CodeValue

	valueOrder []string
}

func NewValueList(name string, profile *Profile) *ValueList {
	return &ValueList{
		Entity: *NewEntity(name, profile),
		Values: make(map[string]CodeValue),
	}
}

func (v *ValueList) TypeInfo() string { return ValueListTypeInfo }

// AddValue registers a code/value pair. Pairs with an empty value are
// ignored.
func (v *ValueList) AddValue(value, code string) {
	if value == "" {
		return
	}
	if _, exists := v.Values[value]; !exists {
		v.valueOrder = append(v.valueOrder, value)
	}
	v.Values[value] = CodeValue{Code: code, Value: value}
}

// CodeValueList returns the code/value pairs in the order they were added.
func (v *ValueList) CodeValueList() []CodeValue {
	values := make([]CodeValue, 0, len(v.valueOrder))
	for _, value := range v.valueOrder {
		values = append(values, v.Values[value])
	}
	return values
}

type EntityRelation struct {
	// Name is the name of the relation.
	Name string

	// Parent is the short name of the parent entity.
	Parent string

	// ParentColumn is the name of the referenced column in the parent.
	ParentColumn string

	// Child is the short name of the child entity.
	Child string

	// ChildColumn is the name of the referencing column in the child.
	ChildColumn string

	Profile *Profile
}

// Valid checks that the parent and child short names resolve to entities
// that already exist in the owning profile. Both failures are reported
// together.
func (er *EntityRelation) Valid() error {
	if er.Profile == nil {
		return fmt.Errorf("relation %s is not attached to a profile", er.Name)
	}

	var err error
	if !er.Profile.Resolves(er.Parent) {
		err = multierr.Append(err, fmt.Errorf(
			"relation %s: parent entity %q does not exist", er.Name, er.Parent))
	}
	if !er.Profile.Resolves(er.Child) {
		err = multierr.Append(err, fmt.Errorf(
			"relation %s: child entity %q does not exist", er.Name, er.Child))
	}

	return err
}

// Resolves reports whether a short name maps to an owned entity-like
// object, including association entities.
func (p *Profile) Resolves(shortName string) bool {
	if shortName == "" {
		return false
	}
	if _, ok := p.Entities[shortName]; ok {
		return true
	}
	_, ok := p.AssociationEntities[shortName]
	return ok
}

type SocialTenure struct {
	// Party is the short name of the party entity.
	Party string

	// SpatialUnit is the short name of the spatial unit entity.
	SpatialUnit string

	// TenureTypeList is the short name of the tenure type value list.
	TenureTypeList string
}
