package scenegeo

// Container magic signature, "OEGM" on disk.
var sceneMagic = [4]byte{'O', 'E', 'G', 'M'}

const (
	VersionMin = 13
	VersionMax = 18
)

// versionLayout describes one schema variant of the container. Every
// version-dependent branch of the codec reads from this table instead of
// comparing version numbers inline, so a future version is one new row.
type versionLayout struct {
	// sampler section: indexed table with explicit count vs two fixed slots
	samplerTable bool
	// element records carry a stored byte offset (12 bytes per slot);
	// otherwise offsets are accumulated from declaration order (8 bytes)
	elementStoredOffset bool
	// mesh record optionals
	hasRenderRegionHash bool
	hasBaronHash        bool
	hasLayerTransition  bool
	wideRenderFlags     bool
	hasBakedPaint       bool
	hasTextureOverrides bool
	// bucket grid section
	multiBucketGrids bool
	gridPathHash     bool
	gridReserved     bool
}

var versionLayouts = map[uint32]versionLayout{
	13: {samplerTable: false, elementStoredOffset: true, hasBakedPaint: true},
	14: {samplerTable: false, elementStoredOffset: true, hasLayerTransition: true, hasBakedPaint: true},
	15: {samplerTable: false, elementStoredOffset: true, hasLayerTransition: true, hasBakedPaint: true,
		hasBaronHash: true, multiBucketGrids: true, gridPathHash: true},
	16: {samplerTable: false, elementStoredOffset: true, hasLayerTransition: true, hasBakedPaint: true,
		wideRenderFlags: true, hasBaronHash: true, multiBucketGrids: true, gridPathHash: true},
	17: {samplerTable: true, elementStoredOffset: true, hasLayerTransition: true, wideRenderFlags: true,
		hasTextureOverrides: true, hasBaronHash: true, multiBucketGrids: true, gridPathHash: true},
	18: {samplerTable: true, elementStoredOffset: false, hasLayerTransition: true, wideRenderFlags: true,
		hasTextureOverrides: true, hasBaronHash: true, hasRenderRegionHash: true,
		multiBucketGrids: true, gridPathHash: true, gridReserved: true},
}

func layoutForVersion(version uint32) (versionLayout, bool) {
	l, ok := versionLayouts[version]
	return l, ok
}

// elementRecordSize is the on-disk size of one element slot for the layout.
func (l versionLayout) elementRecordSize() int {
	if l.elementStoredOffset {
		return 12
	}
	return 8
}
