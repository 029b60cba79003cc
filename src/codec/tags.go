package codec

// Element tags of the configuration document.
const (
	ConfigurationTag  = "Configuration"
	ProfileTag        = "Profile"
	EntityTag         = "Entity"
	ColumnsGroupTag   = "Columns"
	ColumnTag         = "Column"
	ValueListGroupTag = "ValueLists"
	ValueListTag      = "ValueList"
	CodeValueTag      = "CodeValue"

	AssociationGroupTag = "Associations"
	AssociationTag      = "Association"
	RelationGroupTag    = "Relations"
	EntityRelationTag   = "EntityRelation"
	SocialTenureTag     = "SocialTenure"

	GeometryFragmentTag    = "Geometry"
	RelationFragmentTag    = "Relation"
	AssociationFragmentTag = "associationEntity"
)

// Shared attribute names.
const (
	VersionAttr  = "version"
	NameAttr     = "name"
	TypeInfoAttr = "TYPE_INFO"
)

// Entity attribute names.
const (
	ShortNameAttr         = "shortName"
	DescriptionAttr       = "description"
	GlobalAttr            = "global"
	ProxyAttr             = "proxy"
	CreateIDAttr          = "createId"
	SupportsDocumentsAttr = "supportsDocuments"
	AssociativeAttr       = "associative"
	EditableAttr          = "editable"
	FirstParentAttr       = "firstParent"
	SecondParentAttr      = "secondParent"
)

// Column attribute names.
const (
	IndexAttr      = "index"
	MandatoryAttr  = "mandatory"
	SearchableAttr = "searchable"
	UniqueAttr     = "unique"
	UserTipAttr    = "tip"
	MinimumAttr    = "minimum"
	MaximumAttr    = "maximum"
	SRIDAttr       = "srid"
	GeometryAttr   = "type"
)

// Relation and social tenure attribute names.
const (
	ParentAttr         = "parent"
	ParentColumnAttr   = "parentColumn"
	ChildAttr          = "child"
	ChildColumnAttr    = "childColumn"
	PartyAttr          = "party"
	SpatialUnitAttr    = "spatialUnit"
	TenureTypeListAttr = "tenureTypeList"

	CodeAttr  = "code"
	ValueAttr = "value"
)

// Bound formats for date and date-time columns.
const (
	DateFormat     = "2006-01-02"
	DateTimeFormat = "2006-01-02 15:04:05"
)

// ConfigFileSuffix is appended to save paths that lack it.
const ConfigFileSuffix = "stc"

// SnapshotFileSuffix marks snapshot files written by the snapshot store.
const SnapshotFileSuffix = "stcs"
