package codec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenureconf/src/schema"
	"tenureconf/src/settings"
)

func newTestSerializer(config *schema.Configuration, upgrader Upgrader) *ConfigSerializer {
	if upgrader == nil {
		upgrader = UnsupportedUpgrader{}
	}
	return NewConfigSerializer(config, upgrader, testLogger(), settings.GetSettings())
}

// buildTestConfiguration assembles a configuration exercising every
// reference-bearing variant.
func buildTestConfiguration() *schema.Configuration {
	config := schema.NewConfiguration()

	profile := schema.NewProfile("default")
	config.AddProfile(profile)

	status := schema.NewValueList("status", profile)
	status.AddValue("Active", "1")
	status.AddValue("Dormant", "2")
	profile.AddEntityObject(status)

	party := schema.NewEntity("party", profile)
	party.Description = "A person or group with a land interest"
	party.SupportsDocuments = true
	party.AddColumn(&schema.SerialColumn{BaseColumn: schema.NewBaseColumn("id", party)})
	nameMax := 50
	party.AddColumn(&schema.VarCharColumn{
		BaseColumn: schema.NewBaseColumn("full_name", party),
		Maximum:    &nameMax,
	})
	profile.AddEntityObject(party)

	parcel := schema.NewEntity("parcel", profile)
	parcel.CreateID = true
	parcel.AddColumn(&schema.SerialColumn{BaseColumn: schema.NewBaseColumn("id", parcel)})
	parcel.AddColumn(&schema.GeometryColumn{
		BaseColumn:   schema.NewBaseColumn("boundary", parcel),
		SRID:         21037,
		GeometryType: 3,
	})

	relation := &schema.EntityRelation{
		Name:         "parcel_owner",
		Parent:       "party",
		ParentColumn: "id",
		Child:        "parcel",
		ChildColumn:  "owner_id",
		Profile:      profile,
	}
	parcel.AddColumn(&schema.ForeignKeyColumn{
		BaseColumn: schema.NewBaseColumn("owner_id", parcel),
		Relation:   relation,
	})
	profile.AddEntityObject(parcel)
	profile.AddRelation(relation)

	crops := schema.NewAssociationEntity("parcel_crops", profile)
	crops.FirstParent = "status"
	crops.SecondParent = "parcel"
	profile.AddAssociation(crops)

	profile.SocialTenure.Party = "party"
	profile.SocialTenure.SpatialUnit = "parcel"
	profile.SocialTenure.TenureTypeList = "status"

	return config
}

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.stc")

	original := buildTestConfiguration()
	require.NoError(t, newTestSerializer(original, nil).Save(path))

	reloaded := schema.NewConfiguration()
	require.NoError(t, newTestSerializer(reloaded, nil).Load(path))

	require.Contains(t, reloaded.Profiles, "default")
	profile := reloaded.Profiles["default"]

	// Value list
	status, ok := profile.EntityObjectByName("status").(*schema.ValueList)
	require.True(t, ok)
	assert.Len(t, status.CodeValueList(), 2)

	// Entities and columns
	party, ok := profile.EntityObjectByName("party").(*schema.Entity)
	require.True(t, ok)
	assert.True(t, party.SupportsDocuments)
	fullName, ok := party.Columns["full_name"].(*schema.VarCharColumn)
	require.True(t, ok)
	require.NotNil(t, fullName.Maximum)
	assert.Equal(t, 50, *fullName.Maximum)

	parcel, ok := profile.EntityObjectByName("parcel").(*schema.Entity)
	require.True(t, ok)
	assert.True(t, parcel.CreateID)

	boundary, ok := parcel.Columns["boundary"].(*schema.GeometryColumn)
	require.True(t, ok)
	assert.Equal(t, 21037, boundary.SRID)
	assert.Equal(t, 3, boundary.GeometryType)

	owner, ok := parcel.Columns["owner_id"].(*schema.ForeignKeyColumn)
	require.True(t, ok)
	require.NotNil(t, owner.Relation)
	assert.Equal(t, "party", owner.Relation.Parent)

	// Associations, relations and social tenure
	require.Contains(t, profile.AssociationEntities, "parcel_crops")
	assert.Equal(t, "status", profile.AssociationEntities["parcel_crops"].FirstParent)
	require.Contains(t, profile.Relations, "parcel_owner")
	assert.Equal(t, "party", profile.SocialTenure.Party)
	assert.Equal(t, "parcel", profile.SocialTenure.SpatialUnit)
	assert.Equal(t, "status", profile.SocialTenure.TenureTypeList)
}

func TestSaveAppendsFileSuffix(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")

	require.NoError(t, newTestSerializer(buildTestConfiguration(), nil).Save(path))

	_, err := os.Stat(path + ".stc")
	assert.NoError(t, err)
}

func TestSaveKeepsExistingSuffixCaseInsensitively(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.STC")

	require.NoError(t, newTestSerializer(buildTestConfiguration(), nil).Save(path))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestSaveUnwritableTargetFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no-such-dir", "config.stc")

	err := newTestSerializer(buildTestConfiguration(), nil).Save(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be saved in")
}

func TestSaveEmptyConfigurationFails(t *testing.T) {
	err := newTestSerializer(schema.NewConfiguration(), nil).Save("never-created.stc")
	assert.Error(t, err)
}

func TestLoadMissingFileFails(t *testing.T) {
	config := schema.NewConfiguration()
	err := newTestSerializer(config, nil).Load(filepath.Join(t.TempDir(), "missing.stc"))
	assert.Error(t, err)
}

func TestLoadMalformedDocumentFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.stc")
	require.NoError(t, os.WriteFile(path, []byte("<Configuration version='1.2'><Profile"), 0644))

	err := newTestSerializer(schema.NewConfiguration(), nil).Load(path)
	assert.Error(t, err)
}

func TestVersionGateUpgradeFailureLeavesEmptyConfiguration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stale.stc")
	require.NoError(t, os.WriteFile(path,
		[]byte(`<Configuration version="0.5"><Profile name="old"/></Configuration>`), 0644))

	config := buildTestConfiguration()
	err := newTestSerializer(config, nil).Load(path)

	require.Error(t, err)
	// The configuration was reset before the gate ran and stays empty.
	assert.True(t, config.IsNull())
}

func TestMissingVersionRoutesToUpgrade(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "unversioned.stc")
	require.NoError(t, os.WriteFile(path,
		[]byte(`<Configuration><Profile name="old"/></Configuration>`), 0644))

	err := newTestSerializer(schema.NewConfiguration(), nil).Load(path)
	assert.Error(t, err)
}

// stampingUpgrader rewrites the version attribute to the current version,
// standing in for a real migration.
type stampingUpgrader struct{}

func (stampingUpgrader) Upgrade(doc *etree.Document) (*etree.Document, error) {
	root := doc.Root()
	if root == nil {
		root = doc.CreateElement(ConfigurationTag)
	}
	root.CreateAttr(VersionAttr, "1.2")
	return doc, nil
}

func TestVersionGateUpgradeSuccessContinuesLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stale.stc")
	require.NoError(t, os.WriteFile(path,
		[]byte(`<Configuration version="0.5"><Profile name="legacy"><Entity shortName="parcel"/></Profile></Configuration>`), 0644))

	config := schema.NewConfiguration()
	require.NoError(t, newTestSerializer(config, stampingUpgrader{}).Load(path))

	require.Contains(t, config.Profiles, "legacy")
	assert.NotNil(t, config.Profiles["legacy"].EntityObjectByName("parcel"))
}
