package unity

import (
	"bytes"
	"strconv"
	"strings"

	yaml "gopkg.in/yaml.v2"
)

const unityTagPrefix = "tag:unity3d.com,2011:"

// Class IDs used by this package.
const (
	ClassGameObject          = 1
	ClassTransform           = 4
	ClassMaterial            = 21
	ClassMeshRenderer        = 23
	ClassTexture2D           = 28
	ClassMeshFilter          = 33
	ClassSkinnedMeshRenderer = 137
	ClassPrefabInstance      = 1001
)

// YAMLFile is a Unity serialized file: directives followed by "--- !u!<class> &<fileID>" documents.
type YAMLFile struct {
	Directives []byte
	Docs       []*YAMLDoc
}

type YAMLDoc struct {
	Tag    string // tag:unity3d.com,2011:1
	FileID int64
	Header string
	Body   []byte
}

func (d *YAMLDoc) Decode(dst interface{}) error {
	return yaml.Unmarshal(d.Body, dst)
}

func (d *YAMLDoc) ClassID() int {
	id, _ := strconv.Atoi(strings.TrimPrefix(d.Tag, unityTagPrefix))
	return id
}

// ParseYAMLFile splits data into documents. Bodies are not parsed.
func ParseYAMLFile(data []byte) *YAMLFile {
	f := &YAMLFile{}
	tags := map[string]string{}
	var doc *YAMLDoc
	pos, bodyStart := 0, 0
	for pos < len(data) {
		next := len(data)
		if n := bytes.IndexByte(data[pos:], '\n'); n >= 0 {
			next = pos + n + 1
		}
		line := strings.TrimRight(string(data[pos:next]), "\r\n")
		if doc == nil && strings.HasPrefix(line, "%TAG") {
			fields := strings.Fields(line)
			if len(fields) >= 3 {
				tags[strings.Trim(fields[1], "!")] = fields[2]
			}
		} else if strings.HasPrefix(line, "---") {
			if doc != nil {
				doc.Body = data[bodyStart:pos]
			} else {
				f.Directives = data[:pos]
			}
			doc = parseDocHeader(line, tags)
			f.Docs = append(f.Docs, doc)
			bodyStart = next
		}
		pos = next
	}
	if doc != nil {
		doc.Body = data[bodyStart:]
	} else {
		f.Directives = data
	}
	return f
}

func parseDocHeader(line string, tags map[string]string) *YAMLDoc {
	doc := &YAMLDoc{Header: line}
	for _, tok := range strings.Fields(line)[1:] {
		if tok[0] == '!' {
			doc.Tag = tok
			t := strings.SplitN(tok[1:], "!", 2)
			if v, ok := tags[t[0]]; ok && len(t) == 2 {
				doc.Tag = v + t[1]
			}
		} else if tok[0] == '&' {
			doc.FileID, _ = strconv.ParseInt(tok[1:], 10, 64)
		}
	}
	return doc
}

// Find returns the first document of the class.
func (f *YAMLFile) Find(classID int) *YAMLDoc {
	for _, d := range f.Docs {
		if d.ClassID() == classID {
			return d
		}
	}
	return nil
}

func (f *YAMLFile) Bytes() []byte {
	var b bytes.Buffer
	b.Write(f.Directives)
	for _, d := range f.Docs {
		b.WriteString(d.Header)
		b.WriteByte('\n')
		b.Write(d.Body)
	}
	return b.Bytes()
}

// NewYAMLFile returns a file with the standard Unity directives and a single document.
func NewYAMLFile(classID int, fileID int64, body []byte) *YAMLFile {
	return &YAMLFile{
		Directives: []byte("%YAML 1.1\n%TAG !u! " + unityTagPrefix + "\n"),
		Docs: []*YAMLDoc{{
			Tag:    unityTagPrefix + strconv.Itoa(classID),
			FileID: fileID,
			Header: "--- !u!" + strconv.Itoa(classID) + " &" + strconv.FormatInt(fileID, 10),
			Body:   body,
		}},
	}
}
