package schema

import (
	"time"

	"tenureconf/src/helpers"
)

// Type info tags for the column variants an entity can own.
const (
	TextColumnTypeInfo             = "TEXT"
	VarCharColumnTypeInfo          = "VARCHAR"
	IntegerColumnTypeInfo          = "BIGINT"
	DoubleColumnTypeInfo           = "DOUBLE"
	SerialColumnTypeInfo           = "SERIAL"
	DateColumnTypeInfo             = "DATE"
	DateTimeColumnTypeInfo         = "DATETIME"
	YesNoColumnTypeInfo            = "YES_NO"
	GeometryColumnTypeInfo         = "GEOMETRY"
	ForeignKeyColumnTypeInfo       = "FOREIGN_KEY"
	LookupColumnTypeInfo           = "LOOKUP"
	AdminSpatialUnitColumnTypeInfo = "ADMIN_SPATIAL_UNIT"
	MultipleSelectColumnTypeInfo   = "MULTIPLE_SELECT"
)

// AdminSpatialUnitName is the conventional column name of the
// administrative spatial unit column. The declared name on the wire is
// ignored for this variant.
const AdminSpatialUnitName = "admin_spatial_unit"

// Geometry defaults applied when the descriptor fragment is absent.
const (
	DefaultSRID         = 4326
	DefaultGeometryType = 2
)

// Column is implemented by every column variant.
type Column interface {
	// Object returns the common column state shared by all variants.
	Object() *BaseColumn

	// TypeInfo returns the stable type tag of the variant.
	TypeInfo() string
}

type BaseColumn struct {
	// ColumnID is the unique identifier for the column.
	ColumnID string

	// Name is the name of the column, unique within the owning entity.
	Name string

	// Description is the description of the column.
	Description string

	// UserTip is a short hint shown alongside the column.
	UserTip string

	Index      bool
	Mandatory  bool
	Searchable bool
	Unique     bool

	Entity *Entity
}

func NewBaseColumn(name string, entity *Entity) BaseColumn {
	return BaseColumn{
		ColumnID: helpers.GenerateUUID(),
		Name:     name,
		Entity:   entity,
	}
}

func (c *BaseColumn) Object() *BaseColumn { return c }

type TextColumn struct {
	BaseColumn

	// Bounds on an unconstrained text column stay as raw text.
	Minimum *string
	Maximum *string
}

func (c *TextColumn) TypeInfo() string { return TextColumnTypeInfo }

type VarCharColumn struct {
	BaseColumn

	Minimum *int
	Maximum *int
}

func (c *VarCharColumn) TypeInfo() string { return VarCharColumnTypeInfo }

type IntegerColumn struct {
	BaseColumn

	Minimum *int
	Maximum *int
}

func (c *IntegerColumn) TypeInfo() string { return IntegerColumnTypeInfo }

type DoubleColumn struct {
	BaseColumn

	Minimum *float64
	Maximum *float64
}

func (c *DoubleColumn) TypeInfo() string { return DoubleColumnTypeInfo }

type SerialColumn struct {
	BaseColumn
}

func (c *SerialColumn) TypeInfo() string { return SerialColumnTypeInfo }

type DateColumn struct {
	BaseColumn

	Minimum *time.Time
	Maximum *time.Time
}

func (c *DateColumn) TypeInfo() string { return DateColumnTypeInfo }

type DateTimeColumn struct {
	BaseColumn

	Minimum *time.Time
	Maximum *time.Time
}

func (c *DateTimeColumn) TypeInfo() string { return DateTimeColumnTypeInfo }

type YesNoColumn struct {
	BaseColumn
}

func (c *YesNoColumn) TypeInfo() string { return YesNoColumnTypeInfo }

type GeometryColumn struct {
	BaseColumn

	// GeometryType is the geometry type code of the column.
	GeometryType int

	// SRID is the spatial reference identifier of the column.
	SRID int
}

func (c *GeometryColumn) TypeInfo() string { return GeometryColumnTypeInfo }

type ForeignKeyColumn struct {
	BaseColumn

	// Relation is the entity relation backing the column. It is only set
	// when the referenced relation resolved and validated during load.
	Relation *EntityRelation
}

func (c *ForeignKeyColumn) TypeInfo() string { return ForeignKeyColumnTypeInfo }

type LookupColumn struct {
	ForeignKeyColumn
}

func (c *LookupColumn) TypeInfo() string { return LookupColumnTypeInfo }

type AdminSpatialUnitColumn struct {
	ForeignKeyColumn
}

func (c *AdminSpatialUnitColumn) TypeInfo() string { return AdminSpatialUnitColumnTypeInfo }

type MultipleSelectColumn struct {
	BaseColumn

	// AssociationName is the name of the association entity backing the
	// column.
	AssociationName string

	// FirstParent is the short name of the association's first parent
	// entity, resolved during load.
	FirstParent string
}

func (c *MultipleSelectColumn) TypeInfo() string { return MultipleSelectColumnTypeInfo }
