package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileAddEntityObjectLastWriteWins(t *testing.T) {
	profile := NewProfile("default")

	first := NewEntity("parcel", profile)
	first.Description = "first"
	profile.AddEntityObject(first)

	second := NewEntity("parcel", profile)
	second.Description = "second"
	profile.AddEntityObject(second)

	require.Len(t, profile.Entities, 1)
	assert.Equal(t, "second", profile.EntityObjectByName("parcel").Object().Description)

	// The insertion order must not record the short name twice.
	assert.Len(t, profile.EntityObjectList(), 1)
}

func TestEntityColumnOrderPreserved(t *testing.T) {
	profile := NewProfile("default")
	entity := NewEntity("parcel", profile)

	names := []string{"zeta", "alpha", "mid"}
	for _, name := range names {
		entity.AddColumn(&TextColumn{BaseColumn: NewBaseColumn(name, entity)})
	}

	columns := entity.ColumnList()
	require.Len(t, columns, len(names))
	for i, name := range names {
		assert.Equal(t, name, columns[i].Object().Name)
	}
}

func TestEntityNameDerivedFromProfilePrefix(t *testing.T) {
	profile := NewProfile("Local Government")
	entity := NewEntity("Parcel", profile)

	assert.Equal(t, "local_government_parcel", entity.Name)
}

func TestValueListSkipsEmptyValues(t *testing.T) {
	profile := NewProfile("default")
	valueList := NewValueList("status", profile)

	valueList.AddValue("Active", "1")
	valueList.AddValue("", "2")

	values := valueList.CodeValueList()
	require.Len(t, values, 1)
	assert.Equal(t, "1", values[0].Code)
	assert.Equal(t, "Active", values[0].Value)
}

func TestEntityRelationValid(t *testing.T) {
	profile := NewProfile("default")
	profile.AddEntityObject(NewEntity("party", profile))
	profile.AddEntityObject(NewEntity("parcel", profile))

	er := &EntityRelation{
		Name:    "parcel_owner",
		Parent:  "party",
		Child:   "parcel",
		Profile: profile,
	}
	assert.NoError(t, er.Valid())
}

func TestEntityRelationValidReportsBothMissingEndpoints(t *testing.T) {
	profile := NewProfile("default")

	er := &EntityRelation{
		Name:    "orphan",
		Parent:  "nobody",
		Child:   "nothing",
		Profile: profile,
	}

	err := er.Valid()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nobody")
	assert.Contains(t, err.Error(), "nothing")
}

func TestEntityRelationValidResolvesAssociations(t *testing.T) {
	profile := NewProfile("default")
	profile.AddEntityObject(NewEntity("party", profile))
	profile.AddAssociation(NewAssociationEntity("party_parcel", profile))

	er := &EntityRelation{
		Name:    "assoc_link",
		Parent:  "party",
		Child:   "party_parcel",
		Profile: profile,
	}
	assert.NoError(t, er.Valid())
}

func TestConfigurationClear(t *testing.T) {
	config := NewConfiguration()
	config.AddProfile(NewProfile("default"))
	config.Version = 0.5

	config.Clear()

	assert.True(t, config.IsNull())
	assert.Empty(t, config.ProfileList())
	assert.Equal(t, CurrentVersion, config.Version)
}
