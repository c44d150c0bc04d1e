package main

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/typecache"
)

// jsonEncoder mirrors the teacher's format.JSONEncoder shape (a DTO struct
// plus json.MarshalIndent), trimmed to the fields a ParsedType actually
// carries: no fields, no javadoc, no source positions.
type jsonEncoder struct {
	w io.Writer
}

func newJSONEncoder(w io.Writer) *jsonEncoder {
	return &jsonEncoder{w: w}
}

type jsonType struct {
	Name       string       `json:"name"`
	Kind       string       `json:"kind"`
	SuperName  string       `json:"superName,omitempty"`
	Interfaces []string     `json:"interfaces,omitempty"`
	Methods    []jsonMethod `json:"methods,omitempty"`
}

type jsonMethod struct {
	Name       string   `json:"name"`
	Parameters []string `json:"parameters,omitempty"`
	Returns    string   `json:"returns"`
	Modifiers  []string `json:"modifiers,omitempty"`
}

func (e *jsonEncoder) Encode(pt *typecache.ParsedType) error {
	data := buildTypeData(pt)
	text, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	_, err = e.w.Write(append(text, '\n'))
	return err
}

func (e *jsonEncoder) EncodeHierarchy(chain []*typecache.ParsedType) error {
	data := make([]jsonType, len(chain))
	for i, pt := range chain {
		data[i] = buildTypeData(pt)
	}
	text, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	_, err = e.w.Write(append(text, '\n'))
	return err
}

func buildTypeData(pt *typecache.ParsedType) jsonType {
	kind := "class"
	if pt.IsInterface {
		kind = "interface"
	}
	methods := make([]jsonMethod, len(pt.Methods))
	for i, m := range pt.Methods {
		methods[i] = jsonMethod{
			Name:       m.Name,
			Parameters: m.ParamDescriptors,
			Returns:    m.ReturnDescriptor,
			Modifiers:  methodModifiers(m),
		}
	}
	return jsonType{
		Name:       pt.Name,
		Kind:       kind,
		SuperName:  pt.SuperName,
		Interfaces: pt.InterfaceNames,
		Methods:    methods,
	}
}

func methodModifiers(m typecache.ParsedMethod) []string {
	var mods []string
	if m.AccessFlags.IsPublic() {
		mods = append(mods, "public")
	}
	if m.AccessFlags.IsPrivate() {
		mods = append(mods, "private")
	}
	if m.AccessFlags.IsProtected() {
		mods = append(mods, "protected")
	}
	if m.AccessFlags.IsStatic() {
		mods = append(mods, "static")
	}
	if m.AccessFlags.IsFinal() {
		mods = append(mods, "final")
	}
	if m.AccessFlags.IsAbstract() {
		mods = append(mods, "abstract")
	}
	if m.AccessFlags.IsNative() {
		mods = append(mods, "native")
	}
	return mods
}
