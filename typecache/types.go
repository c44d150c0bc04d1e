// Package typecache maintains an in-memory, per-loader-domain cache of
// parsed class-file metadata: type name, super type, interfaces, and
// declared method signatures. It answers type-hierarchy and name-prefix
// queries on the class-loading hot path of a bytecode instrumentation
// pipeline without re-entering that pipeline's own class-loading hook.
package typecache

import (
	"strings"

	"github.com/dhamidi/typecache/classfile"
)

// ParsedMethod is one method declared directly on a parsed type. Parameter
// and return descriptors are kept exactly as they appear in the class file
// (e.g. "Ljava/lang/String;", "[I", "V") rather than translated to source
// type names: callers that need source names convert on demand.
type ParsedMethod struct {
	Name             string
	ParamDescriptors []string
	ReturnDescriptor string
	AccessFlags      classfile.AccessFlags
}

// ParsedType is the immutable result of parsing one class file: its own
// name, its super type (empty for java.lang.Object and for interfaces with
// no explicit super), the interfaces it implements directly, and the
// methods it declares directly. It never carries inherited members.
type ParsedType struct {
	Name           string
	IsInterface    bool
	SuperName      string
	InterfaceNames []string
	Methods        []ParsedMethod
}

// newParsedType builds a ParsedType from a parsed class file. Names are
// normalized to dotted source form at this boundary so every later
// component (the name index, the hierarchy resolver, query results) works
// with one consistent representation.
func newParsedType(cf *classfile.ClassFile) *ParsedType {
	pt := &ParsedType{
		Name:        classfile.InternalToSourceName(cf.ClassName()),
		IsInterface: cf.IsInterface(),
	}

	if super := cf.SuperClassName(); super != "" && super != "java/lang/Object" {
		pt.SuperName = classfile.InternalToSourceName(super)
	}

	for _, iface := range cf.InterfaceNames() {
		pt.InterfaceNames = append(pt.InterfaceNames, classfile.InternalToSourceName(iface))
	}

	pt.Methods = make([]ParsedMethod, 0, len(cf.Methods))
	for i := range cf.Methods {
		m := &cf.Methods[i]
		params, ret, ok := classfile.SplitMethodDescriptor(m.Descriptor(cf.ConstantPool))
		if !ok {
			continue
		}
		pt.Methods = append(pt.Methods, ParsedMethod{
			Name:             m.Name(cf.ConstantPool),
			ParamDescriptors: params,
			ReturnDescriptor: ret,
			AccessFlags:      m.AccessFlags,
		})
	}

	return pt
}

// upperName is the case-folded form used as the name index's sort and
// lookup key.
func upperName(name string) string {
	return strings.ToUpper(name)
}
