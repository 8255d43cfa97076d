package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Синтаксические: строка не прошла грамматику своей конструкции
	SynInfo               Code = 1000
	SynUnknownInstruction Code = 1001
	SynBadOperand         Code = 1002
	SynBadNumber          Code = 1003
	SynBadDescriptor      Code = 1004
	SynBadString          Code = 1005
	SynBadLabel           Code = 1006
	SynBadDefinition      Code = 1007
	SynBadModifier        Code = 1008
	SynBadDirective       Code = 1009
	SynUnknownAlias       Code = 1010
	SynOperandRange       Code = 1011
	SynTooManyErrors      Code = 1012

	// Ассемблер: структурные ошибки AST
	AsmInfo              Code = 2000
	AsmParseFailed       Code = 2001
	AsmNoDefinition      Code = 2002
	AsmMultipleDefs      Code = 2003
	AsmUnresolvedLabel   Code = 2004
	AsmDuplicateLabel    Code = 2005
	AsmVariableAliasing  Code = 2006
	AsmBadOperandType    Code = 2007
	AsmFieldHasCode      Code = 2008
	AsmBadDefaultValue   Code = 2009
	AsmEmptyBody         Code = 2010
	AsmDuplicateSwitch   Code = 2011
	AsmDuplicateArgument Code = 2012

	// Верификатор
	VerInfo           Code = 3000
	VerTypeMismatch   Code = 3001
	VerStackUnderflow Code = 3002
	VerStackMismatch  Code = 3003
	VerFallOff        Code = 3004
	VerBadLocal       Code = 3005
	VerBadOperand     Code = 3006

	// Ввод-вывод
	IOInfo          Code = 4000
	IOLoadFileError Code = 4001
	IOWriteError    Code = 4002
	IODecodeMember  Code = 4003

	// Дизассемблер: ремонт таблицы переменных
	DisInfo            Code = 5000
	DisSplitVariable   Code = 5001
	DisRenamedVariable Code = 5002
	DisDroppedVariable Code = 5003
	DisUnplacedLabel   Code = 5004
)

var codeDescription = map[Code]string{
	UnknownCode: "Unknown error",

	SynInfo:               "Syntax information",
	SynUnknownInstruction: "Unknown instruction or directive",
	SynBadOperand:         "Malformed operand",
	SynBadNumber:          "Malformed number literal",
	SynBadDescriptor:      "Malformed type descriptor",
	SynBadString:          "Malformed string literal",
	SynBadLabel:           "Malformed label",
	SynBadDefinition:      "Malformed member definition",
	SynBadModifier:        "Unknown access modifier",
	SynBadDirective:       "Malformed directive",
	SynUnknownAlias:       "Reference to an undefined alias",
	SynOperandRange:       "Operand out of range",
	SynTooManyErrors:      "Too many syntax errors",

	AsmInfo:              "Assembler information",
	AsmParseFailed:       "Listing has syntax errors",
	AsmNoDefinition:      "Missing member definition",
	AsmMultipleDefs:      "More than one member definition",
	AsmUnresolvedLabel:   "Unresolved label",
	AsmDuplicateLabel:    "Label declared twice",
	AsmVariableAliasing:  "Unsupported variable aliasing",
	AsmBadOperandType:    "Invalid operand type",
	AsmFieldHasCode:      "Field definition contains code",
	AsmBadDefaultValue:   "Default value does not match the field type",
	AsmEmptyBody:         "Method has no code",
	AsmDuplicateSwitch:   "Duplicate switch key",
	AsmDuplicateArgument: "Duplicate parameter name",

	VerInfo:           "Verifier information",
	VerTypeMismatch:   "Operand type mismatch",
	VerStackUnderflow: "Operand stack underflow",
	VerStackMismatch:  "Inconsistent stack height at join",
	VerFallOff:        "Execution falls off the end of the code",
	VerBadLocal:       "Invalid local variable access",
	VerBadOperand:     "Malformed instruction",

	IOInfo:          "I/O information",
	IOLoadFileError: "Failed to read input",
	IOWriteError:    "Failed to write output",
	IODecodeMember:  "Failed to decode member",

	DisInfo:            "Disassembler information",
	DisSplitVariable:   "Variable slot shared by several names",
	DisRenamedVariable: "Variable renamed to keep names unique",
	DisDroppedVariable: "Variable entry dropped",
	DisUnplacedLabel:   "Label referenced but never placed",
}

// ID returns the stable textual identifier, e.g. "SYN1002".
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("ASM%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("VER%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("DIS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	if d, ok := codeDescription[c]; ok {
		return d
	}
	return codeDescription[UnknownCode]
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
