package unity

import (
	"fmt"

	"github.com/pkg/errors"
)

// Main object fileIDs of single-object assets.
const (
	MaterialFileID  int64 = 2100000
	Texture2DFileID int64 = 2800000
)

// Ref types.
const (
	RefTypeBuiltin  = 0
	RefTypeNative   = 2 // .asset, .mat, .prefab
	RefTypeImported = 3 // assets produced by an importer (.png, .fbx, ...)
)

var (
	ErrAssetNotFound    = errors.New("asset not found")
	ErrAssetExists      = errors.New("asset already exists")
	ErrAssetReferenced  = errors.New("asset is referenced by a loaded material")
	ErrNotTexture       = errors.New("asset is not a texture")
	ErrMaterialNotFound = errors.New("material document not found")
)

type Ref struct {
	FileID int64  `yaml:"fileID"`
	GUID   string `yaml:"guid,omitempty"`
	Type   int    `yaml:"type,omitempty"`
}

func (r *Ref) IsValid() bool {
	return r != nil && r.FileID != 0
}

func (r *Ref) String() string {
	if !r.IsValid() {
		return "{fileID: 0}"
	}
	return fmt.Sprintf("{fileID: %d, guid: %s, type: %d}", r.FileID, r.GUID, r.Type)
}

type Asset struct {
	GUID string
	Path string
}

type Vector2 struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
}

type Color struct {
	R float32 `yaml:"r"`
	G float32 `yaml:"g"`
	B float32 `yaml:"b"`
	A float32 `yaml:"a"`
}

const builtinExtraGUID = "0000000000000000f000000000000000"

var (
	StandardShader = Ref{FileID: 46, GUID: builtinExtraGUID, Type: RefTypeBuiltin}
)

var UnityShaders = map[Ref]string{
	{FileID: 45, GUID: builtinExtraGUID}:                        "StandardSpecularSetup",
	{FileID: 46, GUID: builtinExtraGUID}:                        "Standard",
	{FileID: 47, GUID: builtinExtraGUID}:                        "AutodeskInteractive",
	{FileID: 4800000, GUID: "933532a4fcc9baf4fa0491de14d08ed7"}: "URP/Lit",
	{FileID: 4800000, GUID: "650dd9526735d5b46b79224bc6e94025"}: "URP/Unlit",
	{FileID: 4800000, GUID: "8d2bb70cbf9db8d4da26e15b26e74248"}: "URP/SimpleLit",
}

// ShaderName returns the name of a builtin shader or the referenced GUID.
func ShaderName(ref *Ref) string {
	if !ref.IsValid() {
		return ""
	}
	if name, ok := UnityShaders[Ref{FileID: ref.FileID, GUID: ref.GUID}]; ok {
		return name
	}
	return ref.GUID
}

// IsBuiltin reports whether ref points into the editor's builtin resources.
func IsBuiltin(ref *Ref) bool {
	return ref != nil && len(ref.GUID) == 32 && ref.GUID[:16] == "0000000000000000"
}
