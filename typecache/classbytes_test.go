package typecache

import (
	"bytes"
	"encoding/binary"
)

// testMethod describes one method to embed in a hand-built class file.
type testMethod struct {
	name       string
	descriptor string
}

// buildClassBytes assembles minimal well-formed class file bytes for a
// class with the given internal (slash-separated) name, super internal
// name (empty for none), directly-implemented interface internal names,
// and declared methods. It mirrors classfile's own internal test builder
// but lives here since classfile_test helpers aren't importable.
func buildClassBytes(thisName, superName string, interfaces []string, methods []testMethod) []byte {
	var pool [][]byte

	utf8 := func(s string) uint16 {
		var e bytes.Buffer
		e.WriteByte(1) // CONSTANT_Utf8
		binary.Write(&e, binary.BigEndian, uint16(len(s)))
		e.WriteString(s)
		pool = append(pool, e.Bytes())
		return uint16(len(pool))
	}
	class := func(nameIdx uint16) uint16 {
		var e bytes.Buffer
		e.WriteByte(7) // CONSTANT_Class
		binary.Write(&e, binary.BigEndian, nameIdx)
		pool = append(pool, e.Bytes())
		return uint16(len(pool))
	}

	thisClass := class(utf8(thisName))
	var superClass uint16
	if superName != "" {
		superClass = class(utf8(superName))
	}
	ifaceIdx := make([]uint16, len(interfaces))
	for i, iface := range interfaces {
		ifaceIdx[i] = class(utf8(iface))
	}

	type methodRef struct{ nameIdx, descIdx uint16 }
	methodRefs := make([]methodRef, len(methods))
	for i, m := range methods {
		methodRefs[i] = methodRef{nameIdx: utf8(m.name), descIdx: utf8(m.descriptor)}
	}

	var out bytes.Buffer
	binary.Write(&out, binary.BigEndian, uint32(0xCAFEBABE))
	binary.Write(&out, binary.BigEndian, uint16(0))
	binary.Write(&out, binary.BigEndian, uint16(61))

	binary.Write(&out, binary.BigEndian, uint16(len(pool)+1))
	for _, e := range pool {
		out.Write(e)
	}

	binary.Write(&out, binary.BigEndian, uint16(0x0021)) // ACC_PUBLIC | ACC_SUPER
	binary.Write(&out, binary.BigEndian, thisClass)
	binary.Write(&out, binary.BigEndian, superClass)

	binary.Write(&out, binary.BigEndian, uint16(len(ifaceIdx)))
	for _, idx := range ifaceIdx {
		binary.Write(&out, binary.BigEndian, idx)
	}

	binary.Write(&out, binary.BigEndian, uint16(0)) // fields

	binary.Write(&out, binary.BigEndian, uint16(len(methodRefs)))
	for _, m := range methodRefs {
		binary.Write(&out, binary.BigEndian, uint16(0x0001)) // ACC_PUBLIC
		binary.Write(&out, binary.BigEndian, m.nameIdx)
		binary.Write(&out, binary.BigEndian, m.descIdx)
		binary.Write(&out, binary.BigEndian, uint16(0)) // attributes
	}

	binary.Write(&out, binary.BigEndian, uint16(0)) // class attributes

	return out.Bytes()
}
