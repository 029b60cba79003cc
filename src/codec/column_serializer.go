package codec

import (
	"strconv"
	"time"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"tenureconf/src/helpers"
	"tenureconf/src/schema"
)

// ColumnCodec reads and writes one column variant, identified by its type
// tag. Read returns nil when the element cannot yield a column; the
// remainder of the entity still loads.
type ColumnCodec interface {
	TypeInfo() string
	Read(el *etree.Element, entity *schema.Entity, refs *CrossRefIndex) schema.Column
	Write(col schema.Column, parentEl *etree.Element)
}

// ColumnRegistry maps column type tags to their codecs. Exactly one codec
// is registered per tag; lookup is by exact match.
type ColumnRegistry struct {
	codecs map[string]ColumnCodec
	logger *zap.SugaredLogger
}

func NewColumnRegistry(logger *zap.SugaredLogger) *ColumnRegistry {
	r := &ColumnRegistry{
		codecs: make(map[string]ColumnCodec),
		logger: logger,
	}

	r.register(&textColumnCodec{logger: logger})
	r.register(&varCharColumnCodec{logger: logger})
	r.register(&integerColumnCodec{logger: logger})
	r.register(&doubleColumnCodec{logger: logger})
	r.register(&serialColumnCodec{})
	r.register(&dateColumnCodec{logger: logger})
	r.register(&dateTimeColumnCodec{logger: logger})
	r.register(&yesNoColumnCodec{})
	r.register(&geometryColumnCodec{})
	r.register(&foreignKeyColumnCodec{logger: logger})
	r.register(&lookupColumnCodec{logger: logger})
	r.register(&adminSpatialUnitColumnCodec{logger: logger})
	r.register(&multipleSelectColumnCodec{logger: logger})

	return r
}

func (r *ColumnRegistry) register(codec ColumnCodec) {
	r.codecs[codec.TypeInfo()] = codec
}

// Handler returns the codec registered for the given type tag.
func (r *ColumnRegistry) Handler(typeInfo string) (ColumnCodec, bool) {
	codec, ok := r.codecs[typeInfo]
	return codec, ok
}

// Read dispatches the column element to the codec matching its TYPE_INFO
// tag and adds the resulting column to the entity. Elements with an
// unregistered tag are dropped so that documents from a newer type set
// degrade instead of failing the load.
func (r *ColumnRegistry) Read(el *etree.Element, entity *schema.Entity, refs *CrossRefIndex) {
	typeInfo := el.SelectAttrValue(TypeInfoAttr, "")
	if typeInfo == "" {
		r.logger.Debugf("column element in entity %s has no %s attribute, dropped",
			entity.ShortName, TypeInfoAttr)
		return
	}

	codec, ok := r.codecs[typeInfo]
	if !ok {
		r.logger.Debugf("no column handler registered for type %q, column dropped", typeInfo)
		return
	}

	column := codec.Read(el, entity, refs)
	if column != nil {
		entity.AddColumn(column)
	}
}

// Write dispatches the column to the codec matching its type tag and
// appends it to the parent element.
func (r *ColumnRegistry) Write(col schema.Column, parentEl *etree.Element) {
	codec, ok := r.codecs[col.TypeInfo()]
	if !ok {
		r.logger.Debugf("no column handler registered for type %q, column not written", col.TypeInfo())
		return
	}
	codec.Write(col, parentEl)
}

// readBaseColumn extracts the attributes shared by every column variant.
// A missing name yields false and the element is dropped by the caller.
func readBaseColumn(el *etree.Element, entity *schema.Entity) (schema.BaseColumn, bool) {
	name := el.SelectAttrValue(NameAttr, "")
	if name == "" {
		return schema.BaseColumn{}, false
	}

	base := schema.NewBaseColumn(name, entity)
	base.Description = el.SelectAttrValue(DescriptionAttr, "")
	base.UserTip = el.SelectAttrValue(UserTipAttr, "")
	base.Index = helpers.BoolFromText(el.SelectAttrValue(IndexAttr, "False"))
	base.Mandatory = helpers.BoolFromText(el.SelectAttrValue(MandatoryAttr, "False"))
	base.Searchable = helpers.BoolFromText(el.SelectAttrValue(SearchableAttr, "False"))
	base.Unique = helpers.BoolFromText(el.SelectAttrValue(UniqueAttr, "False"))

	return base, true
}

// writeBaseColumn creates the column element and emits the shared
// attributes.
func writeBaseColumn(col schema.Column, parentEl *etree.Element) *etree.Element {
	base := col.Object()

	el := parentEl.CreateElement(ColumnTag)
	el.CreateAttr(TypeInfoAttr, col.TypeInfo())
	el.CreateAttr(DescriptionAttr, base.Description)
	el.CreateAttr(NameAttr, base.Name)
	el.CreateAttr(IndexAttr, helpers.BoolToText(base.Index))
	el.CreateAttr(MandatoryAttr, helpers.BoolToText(base.Mandatory))
	el.CreateAttr(SearchableAttr, helpers.BoolToText(base.Searchable))
	el.CreateAttr(UniqueAttr, helpers.BoolToText(base.Unique))
	el.CreateAttr(UserTipAttr, base.UserTip)

	return el
}

// boundAttr returns the raw text of a bound attribute and whether it is
// present on the element.
func boundAttr(el *etree.Element, attr string) (string, bool) {
	a := el.SelectAttr(attr)
	if a == nil {
		return "", false
	}
	return a.Value, true
}

// intBound coerces a bound to an integer. Values that fail coercion are
// silently omitted and the column keeps the kind's default bound.
func intBound(el *etree.Element, attr string, logger *zap.SugaredLogger) *int {
	text, ok := boundAttr(el, attr)
	if !ok {
		return nil
	}
	v, err := strconv.Atoi(text)
	if err != nil {
		logger.Debugf("column bound %s=%q is not an integer, omitted", attr, text)
		return nil
	}
	return &v
}

func floatBound(el *etree.Element, attr string, logger *zap.SugaredLogger) *float64 {
	text, ok := boundAttr(el, attr)
	if !ok {
		return nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		logger.Debugf("column bound %s=%q is not a number, omitted", attr, text)
		return nil
	}
	return &v
}

func timeBound(el *etree.Element, attr, format string, logger *zap.SugaredLogger) *time.Time {
	text, ok := boundAttr(el, attr)
	if !ok {
		return nil
	}
	v, err := time.Parse(format, text)
	if err != nil {
		logger.Debugf("column bound %s=%q does not match format %s, omitted", attr, text, format)
		return nil
	}
	return &v
}

type textColumnCodec struct {
	logger *zap.SugaredLogger
}

func (c *textColumnCodec) TypeInfo() string { return schema.TextColumnTypeInfo }

func (c *textColumnCodec) Read(el *etree.Element, entity *schema.Entity, refs *CrossRefIndex) schema.Column {
	base, ok := readBaseColumn(el, entity)
	if !ok {
		return nil
	}

	col := &schema.TextColumn{BaseColumn: base}
	if text, ok := boundAttr(el, MinimumAttr); ok {
		col.Minimum = &text
	}
	if text, ok := boundAttr(el, MaximumAttr); ok {
		col.Maximum = &text
	}
	return col
}

func (c *textColumnCodec) Write(col schema.Column, parentEl *etree.Element) {
	text, ok := col.(*schema.TextColumn)
	if !ok {
		return
	}
	el := writeBaseColumn(col, parentEl)
	if text.Minimum != nil {
		el.CreateAttr(MinimumAttr, *text.Minimum)
	}
	if text.Maximum != nil {
		el.CreateAttr(MaximumAttr, *text.Maximum)
	}
}

type varCharColumnCodec struct {
	logger *zap.SugaredLogger
}

func (c *varCharColumnCodec) TypeInfo() string { return schema.VarCharColumnTypeInfo }

func (c *varCharColumnCodec) Read(el *etree.Element, entity *schema.Entity, refs *CrossRefIndex) schema.Column {
	base, ok := readBaseColumn(el, entity)
	if !ok {
		return nil
	}

	return &schema.VarCharColumn{
		BaseColumn: base,
		Minimum:    intBound(el, MinimumAttr, c.logger),
		Maximum:    intBound(el, MaximumAttr, c.logger),
	}
}

func (c *varCharColumnCodec) Write(col schema.Column, parentEl *etree.Element) {
	vc, ok := col.(*schema.VarCharColumn)
	if !ok {
		return
	}
	el := writeBaseColumn(col, parentEl)
	writeIntBounds(el, vc.Minimum, vc.Maximum)
}

type integerColumnCodec struct {
	logger *zap.SugaredLogger
}

func (c *integerColumnCodec) TypeInfo() string { return schema.IntegerColumnTypeInfo }

func (c *integerColumnCodec) Read(el *etree.Element, entity *schema.Entity, refs *CrossRefIndex) schema.Column {
	base, ok := readBaseColumn(el, entity)
	if !ok {
		return nil
	}

	return &schema.IntegerColumn{
		BaseColumn: base,
		Minimum:    intBound(el, MinimumAttr, c.logger),
		Maximum:    intBound(el, MaximumAttr, c.logger),
	}
}

func (c *integerColumnCodec) Write(col schema.Column, parentEl *etree.Element) {
	ic, ok := col.(*schema.IntegerColumn)
	if !ok {
		return
	}
	el := writeBaseColumn(col, parentEl)
	writeIntBounds(el, ic.Minimum, ic.Maximum)
}

func writeIntBounds(el *etree.Element, minimum, maximum *int) {
	if minimum != nil {
		el.CreateAttr(MinimumAttr, strconv.Itoa(*minimum))
	}
	if maximum != nil {
		el.CreateAttr(MaximumAttr, strconv.Itoa(*maximum))
	}
}

type doubleColumnCodec struct {
	logger *zap.SugaredLogger
}

func (c *doubleColumnCodec) TypeInfo() string { return schema.DoubleColumnTypeInfo }

func (c *doubleColumnCodec) Read(el *etree.Element, entity *schema.Entity, refs *CrossRefIndex) schema.Column {
	base, ok := readBaseColumn(el, entity)
	if !ok {
		return nil
	}

	return &schema.DoubleColumn{
		BaseColumn: base,
		Minimum:    floatBound(el, MinimumAttr, c.logger),
		Maximum:    floatBound(el, MaximumAttr, c.logger),
	}
}

func (c *doubleColumnCodec) Write(col schema.Column, parentEl *etree.Element) {
	dc, ok := col.(*schema.DoubleColumn)
	if !ok {
		return
	}
	el := writeBaseColumn(col, parentEl)
	if dc.Minimum != nil {
		el.CreateAttr(MinimumAttr, strconv.FormatFloat(*dc.Minimum, 'f', -1, 64))
	}
	if dc.Maximum != nil {
		el.CreateAttr(MaximumAttr, strconv.FormatFloat(*dc.Maximum, 'f', -1, 64))
	}
}

type serialColumnCodec struct{}

func (c *serialColumnCodec) TypeInfo() string { return schema.SerialColumnTypeInfo }

func (c *serialColumnCodec) Read(el *etree.Element, entity *schema.Entity, refs *CrossRefIndex) schema.Column {
	base, ok := readBaseColumn(el, entity)
	if !ok {
		return nil
	}
	return &schema.SerialColumn{BaseColumn: base}
}

func (c *serialColumnCodec) Write(col schema.Column, parentEl *etree.Element) {
	if _, ok := col.(*schema.SerialColumn); !ok {
		return
	}
	writeBaseColumn(col, parentEl)
}

type dateColumnCodec struct {
	logger *zap.SugaredLogger
}

func (c *dateColumnCodec) TypeInfo() string { return schema.DateColumnTypeInfo }

func (c *dateColumnCodec) Read(el *etree.Element, entity *schema.Entity, refs *CrossRefIndex) schema.Column {
	base, ok := readBaseColumn(el, entity)
	if !ok {
		return nil
	}

	return &schema.DateColumn{
		BaseColumn: base,
		Minimum:    timeBound(el, MinimumAttr, DateFormat, c.logger),
		Maximum:    timeBound(el, MaximumAttr, DateFormat, c.logger),
	}
}

func (c *dateColumnCodec) Write(col schema.Column, parentEl *etree.Element) {
	dc, ok := col.(*schema.DateColumn)
	if !ok {
		return
	}
	el := writeBaseColumn(col, parentEl)
	writeTimeBounds(el, dc.Minimum, dc.Maximum, DateFormat)
}

type dateTimeColumnCodec struct {
	logger *zap.SugaredLogger
}

func (c *dateTimeColumnCodec) TypeInfo() string { return schema.DateTimeColumnTypeInfo }

func (c *dateTimeColumnCodec) Read(el *etree.Element, entity *schema.Entity, refs *CrossRefIndex) schema.Column {
	base, ok := readBaseColumn(el, entity)
	if !ok {
		return nil
	}

	return &schema.DateTimeColumn{
		BaseColumn: base,
		Minimum:    timeBound(el, MinimumAttr, DateTimeFormat, c.logger),
		Maximum:    timeBound(el, MaximumAttr, DateTimeFormat, c.logger),
	}
}

func (c *dateTimeColumnCodec) Write(col schema.Column, parentEl *etree.Element) {
	dc, ok := col.(*schema.DateTimeColumn)
	if !ok {
		return
	}
	el := writeBaseColumn(col, parentEl)
	writeTimeBounds(el, dc.Minimum, dc.Maximum, DateTimeFormat)
}

func writeTimeBounds(el *etree.Element, minimum, maximum *time.Time, format string) {
	if minimum != nil {
		el.CreateAttr(MinimumAttr, minimum.Format(format))
	}
	if maximum != nil {
		el.CreateAttr(MaximumAttr, maximum.Format(format))
	}
}

type yesNoColumnCodec struct{}

func (c *yesNoColumnCodec) TypeInfo() string { return schema.YesNoColumnTypeInfo }

func (c *yesNoColumnCodec) Read(el *etree.Element, entity *schema.Entity, refs *CrossRefIndex) schema.Column {
	base, ok := readBaseColumn(el, entity)
	if !ok {
		return nil
	}
	return &schema.YesNoColumn{BaseColumn: base}
}

func (c *yesNoColumnCodec) Write(col schema.Column, parentEl *etree.Element) {
	if _, ok := col.(*schema.YesNoColumn); !ok {
		return
	}
	writeBaseColumn(col, parentEl)
}

type geometryColumnCodec struct{}

func (c *geometryColumnCodec) TypeInfo() string { return schema.GeometryColumnTypeInfo }

func (c *geometryColumnCodec) Read(el *etree.Element, entity *schema.Entity, refs *CrossRefIndex) schema.Column {
	base, ok := readBaseColumn(el, entity)
	if !ok {
		return nil
	}

	col := &schema.GeometryColumn{
		BaseColumn:   base,
		GeometryType: schema.DefaultGeometryType,
		SRID:         schema.DefaultSRID,
	}

	geomEl := el.SelectElement(GeometryFragmentTag)
	if geomEl != nil {
		if v, err := strconv.Atoi(geomEl.SelectAttrValue(GeometryAttr, "")); err == nil {
			col.GeometryType = v
		}
		if v, err := strconv.Atoi(geomEl.SelectAttrValue(SRIDAttr, "")); err == nil {
			col.SRID = v
		}
	}

	return col
}

func (c *geometryColumnCodec) Write(col schema.Column, parentEl *etree.Element) {
	gc, ok := col.(*schema.GeometryColumn)
	if !ok {
		return
	}
	el := writeBaseColumn(col, parentEl)

	geomEl := el.CreateElement(GeometryFragmentTag)
	geomEl.CreateAttr(SRIDAttr, strconv.Itoa(gc.SRID))
	geomEl.CreateAttr(GeometryAttr, strconv.Itoa(gc.GeometryType))
}

// readRelationRef resolves the relation referenced by a foreign key family
// column. Only a relation that resolves in the index and passes validation
// against the owning profile is returned; anything else yields nil and the
// column loads without a relation.
func readRelationRef(el *etree.Element, entity *schema.Entity, refs *CrossRefIndex,
	logger *zap.SugaredLogger) *schema.EntityRelation {
	relationEl := el.SelectElement(RelationFragmentTag)
	if relationEl == nil {
		return nil
	}

	relationName := relationEl.SelectAttrValue(NameAttr, "")
	erEl, ok := refs.Relations[relationName]
	if !ok {
		logger.Debugf("relation %q referenced by column in entity %s is not declared, omitted",
			relationName, entity.ShortName)
		return nil
	}

	er := readEntityRelation(erEl)
	er.Profile = entity.Profile

	// The owning entity is still under construction and not yet part of
	// the profile, but a relation endpoint naming it is resolvable by
	// definition.
	resolved := func(shortName string) bool {
		return shortName != "" &&
			(shortName == entity.ShortName || entity.Profile.Resolves(shortName))
	}
	if !resolved(er.Parent) || !resolved(er.Child) {
		logger.Debugf("relation %q referenced by column in entity %s has unresolved endpoints, omitted",
			relationName, entity.ShortName)
		return nil
	}

	return er
}

type foreignKeyColumnCodec struct {
	logger *zap.SugaredLogger
}

func (c *foreignKeyColumnCodec) TypeInfo() string { return schema.ForeignKeyColumnTypeInfo }

func (c *foreignKeyColumnCodec) Read(el *etree.Element, entity *schema.Entity, refs *CrossRefIndex) schema.Column {
	base, ok := readBaseColumn(el, entity)
	if !ok {
		return nil
	}

	return &schema.ForeignKeyColumn{
		BaseColumn: base,
		Relation:   readRelationRef(el, entity, refs, c.logger),
	}
}

func (c *foreignKeyColumnCodec) Write(col schema.Column, parentEl *etree.Element) {
	fk, ok := col.(*schema.ForeignKeyColumn)
	if !ok {
		return
	}
	el := writeBaseColumn(col, parentEl)
	writeRelationRef(el, fk.Relation)
}

func writeRelationRef(columnEl *etree.Element, relation *schema.EntityRelation) {
	if relation == nil {
		return
	}
	relationEl := columnEl.CreateElement(RelationFragmentTag)
	relationEl.CreateAttr(NameAttr, relation.Name)
}

type lookupColumnCodec struct {
	logger *zap.SugaredLogger
}

func (c *lookupColumnCodec) TypeInfo() string { return schema.LookupColumnTypeInfo }

func (c *lookupColumnCodec) Read(el *etree.Element, entity *schema.Entity, refs *CrossRefIndex) schema.Column {
	base, ok := readBaseColumn(el, entity)
	if !ok {
		return nil
	}

	return &schema.LookupColumn{
		ForeignKeyColumn: schema.ForeignKeyColumn{
			BaseColumn: base,
			Relation:   readRelationRef(el, entity, refs, c.logger),
		},
	}
}

func (c *lookupColumnCodec) Write(col schema.Column, parentEl *etree.Element) {
	lc, ok := col.(*schema.LookupColumn)
	if !ok {
		return
	}
	el := writeBaseColumn(col, parentEl)
	writeRelationRef(el, lc.Relation)
}

type adminSpatialUnitColumnCodec struct {
	logger *zap.SugaredLogger
}

func (c *adminSpatialUnitColumnCodec) TypeInfo() string {
	return schema.AdminSpatialUnitColumnTypeInfo
}

// Read drops the declared column name: the identity of the administrative
// spatial unit column is fixed by convention.
func (c *adminSpatialUnitColumnCodec) Read(el *etree.Element, entity *schema.Entity, refs *CrossRefIndex) schema.Column {
	base, ok := readBaseColumn(el, entity)
	if !ok {
		return nil
	}
	base.Name = schema.AdminSpatialUnitName

	return &schema.AdminSpatialUnitColumn{
		ForeignKeyColumn: schema.ForeignKeyColumn{
			BaseColumn: base,
			Relation:   readRelationRef(el, entity, refs, c.logger),
		},
	}
}

func (c *adminSpatialUnitColumnCodec) Write(col schema.Column, parentEl *etree.Element) {
	ac, ok := col.(*schema.AdminSpatialUnitColumn)
	if !ok {
		return
	}
	el := writeBaseColumn(col, parentEl)
	writeRelationRef(el, ac.Relation)
}

type multipleSelectColumnCodec struct {
	logger *zap.SugaredLogger
}

func (c *multipleSelectColumnCodec) TypeInfo() string { return schema.MultipleSelectColumnTypeInfo }

func (c *multipleSelectColumnCodec) Read(el *etree.Element, entity *schema.Entity, refs *CrossRefIndex) schema.Column {
	base, ok := readBaseColumn(el, entity)
	if !ok {
		return nil
	}

	col := &schema.MultipleSelectColumn{BaseColumn: base}

	assocEl := el.SelectElement(AssociationFragmentTag)
	if assocEl != nil {
		assocName := assocEl.SelectAttrValue(NameAttr, "")
		declaration, ok := refs.Associations[assocName]
		if !ok {
			c.logger.Debugf("association %q referenced by column %s is not declared, omitted",
				assocName, base.Name)
			return col
		}

		col.AssociationName = assocName
		col.FirstParent = declaration.SelectAttrValue(FirstParentAttr, "")
	}

	return col
}

func (c *multipleSelectColumnCodec) Write(col schema.Column, parentEl *etree.Element) {
	ms, ok := col.(*schema.MultipleSelectColumn)
	if !ok {
		return
	}
	el := writeBaseColumn(col, parentEl)
	if ms.AssociationName != "" {
		assocEl := el.CreateElement(AssociationFragmentTag)
		assocEl.CreateAttr(NameAttr, ms.AssociationName)
	}
}
