package codec

import (
	"github.com/beevik/etree"
	"go.uber.org/zap"

	"tenureconf/src/helpers"
	"tenureconf/src/schema"
)

// dependencyFlags lists the column type tags that make an entity element
// dependency bearing. Such entities are deferred until all independent
// entities have been constructed.
var dependencyFlags = map[string]bool{
	schema.ForeignKeyColumnTypeInfo:       true,
	schema.LookupColumnTypeInfo:           true,
	schema.AdminSpatialUnitColumnTypeInfo: true,
}

// EntityCodec reads and writes one entity-like variant, identified by its
// type tag.
type EntityCodec interface {
	TypeInfo() string

	// TagName is the element tag of a single declaration.
	TagName() string

	// GroupTag is the tag of the grouping element the declarations sit
	// under, or empty when they sit directly under the profile.
	GroupTag() string

	// HasDependency reports whether the element must be deferred until
	// its dependencies are constructed.
	HasDependency(el *etree.Element) bool

	Read(el *etree.Element, profile *schema.Profile, refs *CrossRefIndex)
	Write(obj schema.EntityObject, profileEl *etree.Element)
}

// EntityRegistry maps entity type tags to their codecs.
type EntityRegistry struct {
	codecs map[string]EntityCodec
	order  []string
	logger *zap.SugaredLogger
}

func NewEntityRegistry(columns *ColumnRegistry, logger *zap.SugaredLogger) *EntityRegistry {
	r := &EntityRegistry{
		codecs: make(map[string]EntityCodec),
		logger: logger,
	}

	r.register(&entityCodec{columns: columns, logger: logger})
	r.register(&associationEntityCodec{logger: logger})
	r.register(&valueListCodec{logger: logger})

	return r
}

func (r *EntityRegistry) register(codec EntityCodec) {
	r.codecs[codec.TypeInfo()] = codec
	r.order = append(r.order, codec.TypeInfo())
}

// Handler returns the codec registered for the given type tag.
func (r *EntityRegistry) Handler(typeInfo string) (EntityCodec, bool) {
	codec, ok := r.codecs[typeInfo]
	return codec, ok
}

// HandlerByTag returns the codec whose entry tag (group tag when present,
// otherwise the declaration tag) matches the given element tag.
func (r *EntityRegistry) HandlerByTag(tag string) (EntityCodec, bool) {
	for _, typeInfo := range r.order {
		codec := r.codecs[typeInfo]
		entryTag := codec.GroupTag()
		if entryTag == "" {
			entryTag = codec.TagName()
		}
		if entryTag == tag {
			return codec, true
		}
	}
	return nil, false
}

// groupElement finds or creates the grouping element for a codec under the
// profile element. Codecs without a group tag write directly under the
// profile.
func groupElement(codec EntityCodec, profileEl *etree.Element) *etree.Element {
	groupTag := codec.GroupTag()
	if groupTag == "" {
		return profileEl
	}

	groupEl := profileEl.SelectElement(groupTag)
	if groupEl == nil {
		groupEl = profileEl.CreateElement(groupTag)
	}
	return groupEl
}

type entityCodec struct {
	columns *ColumnRegistry
	logger  *zap.SugaredLogger
}

func (c *entityCodec) TypeInfo() string { return schema.EntityTypeInfo }
func (c *entityCodec) TagName() string  { return EntityTag }
func (c *entityCodec) GroupTag() string { return "" }

// columnElements returns the Column children of the entity's Columns
// group in document order.
func columnElements(entityEl *etree.Element) []*etree.Element {
	groupEl := entityEl.SelectElement(ColumnsGroupTag)
	if groupEl == nil {
		return nil
	}

	var els []*etree.Element
	for _, el := range groupEl.ChildElements() {
		if el.Tag == ColumnTag {
			els = append(els, el)
		}
	}
	return els
}

func (c *entityCodec) HasDependency(el *etree.Element) bool {
	for _, columnEl := range columnElements(el) {
		if dependencyFlags[columnEl.SelectAttrValue(TypeInfoAttr, "")] {
			return true
		}
	}
	return false
}

func (c *entityCodec) Read(el *etree.Element, profile *schema.Profile, refs *CrossRefIndex) {
	shortName := el.SelectAttrValue(ShortNameAttr, "")
	if shortName == "" {
		c.logger.Debugf("entity element in profile %s has no short name, skipped", profile.Name)
		return
	}

	entity := schema.NewEntity(shortName, profile)
	entity.Description = el.SelectAttrValue(DescriptionAttr, "")

	if text := el.SelectAttrValue(GlobalAttr, ""); text != "" {
		entity.IsGlobal = helpers.BoolFromText(text)
	}
	if text := el.SelectAttrValue(ProxyAttr, ""); text != "" {
		entity.IsProxy = helpers.BoolFromText(text)
	}
	if text := el.SelectAttrValue(CreateIDAttr, ""); text != "" {
		entity.CreateID = helpers.BoolFromText(text)
	}
	if text := el.SelectAttrValue(SupportsDocumentsAttr, ""); text != "" {
		entity.SupportsDocuments = helpers.BoolFromText(text)
	}
	if text := el.SelectAttrValue(AssociativeAttr, ""); text != "" {
		entity.IsAssociative = helpers.BoolFromText(text)
	}
	if text := el.SelectAttrValue(EditableAttr, ""); text != "" {
		entity.UserEditable = helpers.BoolFromText(text)
	}

	for _, columnEl := range columnElements(el) {
		c.columns.Read(columnEl, entity, refs)
	}

	profile.AddEntityObject(entity)
}

func (c *entityCodec) Write(obj schema.EntityObject, profileEl *etree.Element) {
	entity := obj.Object()

	el := profileEl.CreateElement(EntityTag)
	el.CreateAttr(GlobalAttr, helpers.BoolToText(entity.IsGlobal))
	el.CreateAttr(ShortNameAttr, entity.ShortName)
	// The name attribute is informational; it is recomputed on load.
	el.CreateAttr(NameAttr, entity.Name)
	el.CreateAttr(DescriptionAttr, entity.Description)
	el.CreateAttr(AssociativeAttr, helpers.BoolToText(entity.IsAssociative))
	el.CreateAttr(EditableAttr, helpers.BoolToText(entity.UserEditable))
	el.CreateAttr(CreateIDAttr, helpers.BoolToText(entity.CreateID))
	el.CreateAttr(ProxyAttr, helpers.BoolToText(entity.IsProxy))
	el.CreateAttr(SupportsDocumentsAttr, helpers.BoolToText(entity.SupportsDocuments))

	columnsEl := el.CreateElement(ColumnsGroupTag)
	for _, column := range entity.ColumnList() {
		c.columns.Write(column, columnsEl)
	}
}

type associationEntityCodec struct {
	logger *zap.SugaredLogger
}

func (c *associationEntityCodec) TypeInfo() string { return schema.AssociationEntityTypeInfo }
func (c *associationEntityCodec) TagName() string  { return AssociationTag }
func (c *associationEntityCodec) GroupTag() string { return AssociationGroupTag }

func (c *associationEntityCodec) HasDependency(el *etree.Element) bool { return false }

func (c *associationEntityCodec) Read(el *etree.Element, profile *schema.Profile, refs *CrossRefIndex) {
	shortName := el.SelectAttrValue(ShortNameAttr, "")
	if shortName == "" {
		c.logger.Debugf("association element in profile %s has no short name, skipped", profile.Name)
		return
	}

	ae := schema.NewAssociationEntity(shortName, profile)
	ae.FirstParent = el.SelectAttrValue(FirstParentAttr, "")
	ae.SecondParent = el.SelectAttrValue(SecondParentAttr, "")

	profile.AddAssociation(ae)
}

func (c *associationEntityCodec) Write(obj schema.EntityObject, profileEl *etree.Element) {
	ae, ok := obj.(*schema.AssociationEntity)
	if !ok {
		return
	}

	el := groupElement(c, profileEl).CreateElement(AssociationTag)
	el.CreateAttr(NameAttr, ae.Name)
	el.CreateAttr(ShortNameAttr, ae.ShortName)
	el.CreateAttr(FirstParentAttr, ae.FirstParent)
	el.CreateAttr(SecondParentAttr, ae.SecondParent)
}

type valueListCodec struct {
	logger *zap.SugaredLogger
}

func (c *valueListCodec) TypeInfo() string { return schema.ValueListTypeInfo }
func (c *valueListCodec) TagName() string  { return ValueListTag }
func (c *valueListCodec) GroupTag() string { return ValueListGroupTag }

func (c *valueListCodec) HasDependency(el *etree.Element) bool { return false }

// Read consumes the ValueLists group element and registers every named
// value list it contains. Code values with an empty value are skipped.
func (c *valueListCodec) Read(el *etree.Element, profile *schema.Profile, refs *CrossRefIndex) {
	for _, valueListEl := range el.SelectElements(ValueListTag) {
		name := valueListEl.SelectAttrValue(NameAttr, "")
		if name == "" {
			c.logger.Debugf("value list element in profile %s has no name, skipped", profile.Name)
			continue
		}

		valueList := schema.NewValueList(name, profile)
		for _, codeValueEl := range valueListEl.SelectElements(CodeValueTag) {
			code := codeValueEl.SelectAttrValue(CodeAttr, "")
			value := codeValueEl.SelectAttrValue(ValueAttr, "")
			valueList.AddValue(value, code)
		}

		profile.AddEntityObject(valueList)
	}
}

func (c *valueListCodec) Write(obj schema.EntityObject, profileEl *etree.Element) {
	valueList, ok := obj.(*schema.ValueList)
	if !ok {
		return
	}

	el := groupElement(c, profileEl).CreateElement(ValueListTag)
	el.CreateAttr(NameAttr, valueList.ShortName)

	for _, codeValue := range valueList.CodeValueList() {
		codeValueEl := el.CreateElement(CodeValueTag)
		codeValueEl.CreateAttr(ValueAttr, codeValue.Value)
		codeValueEl.CreateAttr(CodeAttr, codeValue.Code)
	}
}
