package opcode

// JVM opcodes. Short forms (ILOAD_0, LDC_W, GOTO_W, ...) and WIDE are not
// listed: listings always spell the general form.
const (
	Nop             Opcode = 0
	AconstNull      Opcode = 1
	IconstM1        Opcode = 2
	Iconst0         Opcode = 3
	Iconst1         Opcode = 4
	Iconst2         Opcode = 5
	Iconst3         Opcode = 6
	Iconst4         Opcode = 7
	Iconst5         Opcode = 8
	Lconst0         Opcode = 9
	Lconst1         Opcode = 10
	Fconst0         Opcode = 11
	Fconst1         Opcode = 12
	Fconst2         Opcode = 13
	Dconst0         Opcode = 14
	Dconst1         Opcode = 15
	Bipush          Opcode = 16
	Sipush          Opcode = 17
	Ldc             Opcode = 18
	Iload           Opcode = 21
	Lload           Opcode = 22
	Fload           Opcode = 23
	Dload           Opcode = 24
	Aload           Opcode = 25
	Iaload          Opcode = 46
	Laload          Opcode = 47
	Faload          Opcode = 48
	Daload          Opcode = 49
	Aaload          Opcode = 50
	Baload          Opcode = 51
	Caload          Opcode = 52
	Saload          Opcode = 53
	Istore          Opcode = 54
	Lstore          Opcode = 55
	Fstore          Opcode = 56
	Dstore          Opcode = 57
	Astore          Opcode = 58
	Iastore         Opcode = 79
	Lastore         Opcode = 80
	Fastore         Opcode = 81
	Dastore         Opcode = 82
	Aastore         Opcode = 83
	Bastore         Opcode = 84
	Castore         Opcode = 85
	Sastore         Opcode = 86
	Pop             Opcode = 87
	Pop2            Opcode = 88
	Dup             Opcode = 89
	DupX1           Opcode = 90
	DupX2           Opcode = 91
	Dup2            Opcode = 92
	Dup2X1          Opcode = 93
	Dup2X2          Opcode = 94
	Swap            Opcode = 95
	Iadd            Opcode = 96
	Ladd            Opcode = 97
	Fadd            Opcode = 98
	Dadd            Opcode = 99
	Isub            Opcode = 100
	Lsub            Opcode = 101
	Fsub            Opcode = 102
	Dsub            Opcode = 103
	Imul            Opcode = 104
	Lmul            Opcode = 105
	Fmul            Opcode = 106
	Dmul            Opcode = 107
	Idiv            Opcode = 108
	Ldiv            Opcode = 109
	Fdiv            Opcode = 110
	Ddiv            Opcode = 111
	Irem            Opcode = 112
	Lrem            Opcode = 113
	Frem            Opcode = 114
	Drem            Opcode = 115
	Ineg            Opcode = 116
	Lneg            Opcode = 117
	Fneg            Opcode = 118
	Dneg            Opcode = 119
	Ishl            Opcode = 120
	Lshl            Opcode = 121
	Ishr            Opcode = 122
	Lshr            Opcode = 123
	Iushr           Opcode = 124
	Lushr           Opcode = 125
	Iand            Opcode = 126
	Land            Opcode = 127
	Ior             Opcode = 128
	Lor             Opcode = 129
	Ixor            Opcode = 130
	Lxor            Opcode = 131
	Iinc            Opcode = 132
	I2l             Opcode = 133
	I2f             Opcode = 134
	I2d             Opcode = 135
	L2i             Opcode = 136
	L2f             Opcode = 137
	L2d             Opcode = 138
	F2i             Opcode = 139
	F2l             Opcode = 140
	F2d             Opcode = 141
	D2i             Opcode = 142
	D2l             Opcode = 143
	D2f             Opcode = 144
	I2b             Opcode = 145
	I2c             Opcode = 146
	I2s             Opcode = 147
	Lcmp            Opcode = 148
	Fcmpl           Opcode = 149
	Fcmpg           Opcode = 150
	Dcmpl           Opcode = 151
	Dcmpg           Opcode = 152
	Ifeq            Opcode = 153
	Ifne            Opcode = 154
	Iflt            Opcode = 155
	Ifge            Opcode = 156
	Ifgt            Opcode = 157
	Ifle            Opcode = 158
	IfIcmpeq        Opcode = 159
	IfIcmpne        Opcode = 160
	IfIcmplt        Opcode = 161
	IfIcmpge        Opcode = 162
	IfIcmpgt        Opcode = 163
	IfIcmple        Opcode = 164
	IfAcmpeq        Opcode = 165
	IfAcmpne        Opcode = 166
	Goto            Opcode = 167
	Jsr             Opcode = 168
	Ret             Opcode = 169
	Tableswitch     Opcode = 170
	Lookupswitch    Opcode = 171
	Ireturn         Opcode = 172
	Lreturn         Opcode = 173
	Freturn         Opcode = 174
	Dreturn         Opcode = 175
	Areturn         Opcode = 176
	Return          Opcode = 177
	Getstatic       Opcode = 178
	Putstatic       Opcode = 179
	Getfield        Opcode = 180
	Putfield        Opcode = 181
	Invokevirtual   Opcode = 182
	Invokespecial   Opcode = 183
	Invokestatic    Opcode = 184
	Invokeinterface Opcode = 185
	Invokedynamic   Opcode = 186
	New             Opcode = 187
	Newarray        Opcode = 188
	Anewarray       Opcode = 189
	Arraylength     Opcode = 190
	Athrow          Opcode = 191
	Checkcast       Opcode = 192
	Instanceof      Opcode = 193
	Monitorenter    Opcode = 194
	Monitorexit     Opcode = 195
	Multianewarray  Opcode = 197
	Ifnull          Opcode = 198
	Ifnonnull       Opcode = 199
)

// Pseudo instructions that occupy a position in the stream without being
// emitted as bytecode.
const (
	Label Opcode = 0x100 + iota
	Line
)

var table = [256]info{
	Nop:             {"NOP", ShapeNone},
	AconstNull:      {"ACONST_NULL", ShapeNone},
	IconstM1:        {"ICONST_M1", ShapeNone},
	Iconst0:         {"ICONST_0", ShapeNone},
	Iconst1:         {"ICONST_1", ShapeNone},
	Iconst2:         {"ICONST_2", ShapeNone},
	Iconst3:         {"ICONST_3", ShapeNone},
	Iconst4:         {"ICONST_4", ShapeNone},
	Iconst5:         {"ICONST_5", ShapeNone},
	Lconst0:         {"LCONST_0", ShapeNone},
	Lconst1:         {"LCONST_1", ShapeNone},
	Fconst0:         {"FCONST_0", ShapeNone},
	Fconst1:         {"FCONST_1", ShapeNone},
	Fconst2:         {"FCONST_2", ShapeNone},
	Dconst0:         {"DCONST_0", ShapeNone},
	Dconst1:         {"DCONST_1", ShapeNone},
	Bipush:          {"BIPUSH", ShapeInt},
	Sipush:          {"SIPUSH", ShapeInt},
	Ldc:             {"LDC", ShapeLdc},
	Iload:           {"ILOAD", ShapeVar},
	Lload:           {"LLOAD", ShapeVar},
	Fload:           {"FLOAD", ShapeVar},
	Dload:           {"DLOAD", ShapeVar},
	Aload:           {"ALOAD", ShapeVar},
	Iaload:          {"IALOAD", ShapeNone},
	Laload:          {"LALOAD", ShapeNone},
	Faload:          {"FALOAD", ShapeNone},
	Daload:          {"DALOAD", ShapeNone},
	Aaload:          {"AALOAD", ShapeNone},
	Baload:          {"BALOAD", ShapeNone},
	Caload:          {"CALOAD", ShapeNone},
	Saload:          {"SALOAD", ShapeNone},
	Istore:          {"ISTORE", ShapeVar},
	Lstore:          {"LSTORE", ShapeVar},
	Fstore:          {"FSTORE", ShapeVar},
	Dstore:          {"DSTORE", ShapeVar},
	Astore:          {"ASTORE", ShapeVar},
	Iastore:         {"IASTORE", ShapeNone},
	Lastore:         {"LASTORE", ShapeNone},
	Fastore:         {"FASTORE", ShapeNone},
	Dastore:         {"DASTORE", ShapeNone},
	Aastore:         {"AASTORE", ShapeNone},
	Bastore:         {"BASTORE", ShapeNone},
	Castore:         {"CASTORE", ShapeNone},
	Sastore:         {"SASTORE", ShapeNone},
	Pop:             {"POP", ShapeNone},
	Pop2:            {"POP2", ShapeNone},
	Dup:             {"DUP", ShapeNone},
	DupX1:           {"DUP_X1", ShapeNone},
	DupX2:           {"DUP_X2", ShapeNone},
	Dup2:            {"DUP2", ShapeNone},
	Dup2X1:          {"DUP2_X1", ShapeNone},
	Dup2X2:          {"DUP2_X2", ShapeNone},
	Swap:            {"SWAP", ShapeNone},
	Iadd:            {"IADD", ShapeNone},
	Ladd:            {"LADD", ShapeNone},
	Fadd:            {"FADD", ShapeNone},
	Dadd:            {"DADD", ShapeNone},
	Isub:            {"ISUB", ShapeNone},
	Lsub:            {"LSUB", ShapeNone},
	Fsub:            {"FSUB", ShapeNone},
	Dsub:            {"DSUB", ShapeNone},
	Imul:            {"IMUL", ShapeNone},
	Lmul:            {"LMUL", ShapeNone},
	Fmul:            {"FMUL", ShapeNone},
	Dmul:            {"DMUL", ShapeNone},
	Idiv:            {"IDIV", ShapeNone},
	Ldiv:            {"LDIV", ShapeNone},
	Fdiv:            {"FDIV", ShapeNone},
	Ddiv:            {"DDIV", ShapeNone},
	Irem:            {"IREM", ShapeNone},
	Lrem:            {"LREM", ShapeNone},
	Frem:            {"FREM", ShapeNone},
	Drem:            {"DREM", ShapeNone},
	Ineg:            {"INEG", ShapeNone},
	Lneg:            {"LNEG", ShapeNone},
	Fneg:            {"FNEG", ShapeNone},
	Dneg:            {"DNEG", ShapeNone},
	Ishl:            {"ISHL", ShapeNone},
	Lshl:            {"LSHL", ShapeNone},
	Ishr:            {"ISHR", ShapeNone},
	Lshr:            {"LSHR", ShapeNone},
	Iushr:           {"IUSHR", ShapeNone},
	Lushr:           {"LUSHR", ShapeNone},
	Iand:            {"IAND", ShapeNone},
	Land:            {"LAND", ShapeNone},
	Ior:             {"IOR", ShapeNone},
	Lor:             {"LOR", ShapeNone},
	Ixor:            {"IXOR", ShapeNone},
	Lxor:            {"LXOR", ShapeNone},
	Iinc:            {"IINC", ShapeIinc},
	I2l:             {"I2L", ShapeNone},
	I2f:             {"I2F", ShapeNone},
	I2d:             {"I2D", ShapeNone},
	L2i:             {"L2I", ShapeNone},
	L2f:             {"L2F", ShapeNone},
	L2d:             {"L2D", ShapeNone},
	F2i:             {"F2I", ShapeNone},
	F2l:             {"F2L", ShapeNone},
	F2d:             {"F2D", ShapeNone},
	D2i:             {"D2I", ShapeNone},
	D2l:             {"D2L", ShapeNone},
	D2f:             {"D2F", ShapeNone},
	I2b:             {"I2B", ShapeNone},
	I2c:             {"I2C", ShapeNone},
	I2s:             {"I2S", ShapeNone},
	Lcmp:            {"LCMP", ShapeNone},
	Fcmpl:           {"FCMPL", ShapeNone},
	Fcmpg:           {"FCMPG", ShapeNone},
	Dcmpl:           {"DCMPL", ShapeNone},
	Dcmpg:           {"DCMPG", ShapeNone},
	Ifeq:            {"IFEQ", ShapeJump},
	Ifne:            {"IFNE", ShapeJump},
	Iflt:            {"IFLT", ShapeJump},
	Ifge:            {"IFGE", ShapeJump},
	Ifgt:            {"IFGT", ShapeJump},
	Ifle:            {"IFLE", ShapeJump},
	IfIcmpeq:        {"IF_ICMPEQ", ShapeJump},
	IfIcmpne:        {"IF_ICMPNE", ShapeJump},
	IfIcmplt:        {"IF_ICMPLT", ShapeJump},
	IfIcmpge:        {"IF_ICMPGE", ShapeJump},
	IfIcmpgt:        {"IF_ICMPGT", ShapeJump},
	IfIcmple:        {"IF_ICMPLE", ShapeJump},
	IfAcmpeq:        {"IF_ACMPEQ", ShapeJump},
	IfAcmpne:        {"IF_ACMPNE", ShapeJump},
	Goto:            {"GOTO", ShapeJump},
	Jsr:             {"JSR", ShapeJump},
	Ret:             {"RET", ShapeVar},
	Tableswitch:     {"TABLESWITCH", ShapeTableSwitch},
	Lookupswitch:    {"LOOKUPSWITCH", ShapeLookupSwitch},
	Ireturn:         {"IRETURN", ShapeNone},
	Lreturn:         {"LRETURN", ShapeNone},
	Freturn:         {"FRETURN", ShapeNone},
	Dreturn:         {"DRETURN", ShapeNone},
	Areturn:         {"ARETURN", ShapeNone},
	Return:          {"RETURN", ShapeNone},
	Getstatic:       {"GETSTATIC", ShapeField},
	Putstatic:       {"PUTSTATIC", ShapeField},
	Getfield:        {"GETFIELD", ShapeField},
	Putfield:        {"PUTFIELD", ShapeField},
	Invokevirtual:   {"INVOKEVIRTUAL", ShapeMethod},
	Invokespecial:   {"INVOKESPECIAL", ShapeMethod},
	Invokestatic:    {"INVOKESTATIC", ShapeMethod},
	Invokeinterface: {"INVOKEINTERFACE", ShapeMethod},
	Invokedynamic:   {"INVOKEDYNAMIC", ShapeInvokeDynamic},
	New:             {"NEW", ShapeType},
	Newarray:        {"NEWARRAY", ShapeInt},
	Anewarray:       {"ANEWARRAY", ShapeType},
	Arraylength:     {"ARRAYLENGTH", ShapeNone},
	Athrow:          {"ATHROW", ShapeNone},
	Checkcast:       {"CHECKCAST", ShapeType},
	Instanceof:      {"INSTANCEOF", ShapeType},
	Monitorenter:    {"MONITORENTER", ShapeNone},
	Monitorexit:     {"MONITOREXIT", ShapeNone},
	Multianewarray:  {"MULTIANEWARRAY", ShapeMultiArray},
	Ifnull:          {"IFNULL", ShapeJump},
	Ifnonnull:       {"IFNONNULL", ShapeJump},
}
