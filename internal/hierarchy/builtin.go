package hierarchy

const objectName = "java/lang/Object"

func class(name, super string, interfaces ...string) ClassInfo {
	return ClassInfo{Name: name, Super: super, Interfaces: interfaces}
}

func iface(name string, supers ...string) ClassInfo {
	return ClassInfo{Name: name, Super: objectName, Interfaces: supers, Interface: true}
}

// builtins is the slice of the platform library most listings touch.
var builtins = []ClassInfo{
	{Name: objectName},

	iface("java/io/Serializable"),
	iface("java/lang/Cloneable"),
	iface("java/lang/Comparable"),
	iface("java/lang/CharSequence"),
	iface("java/lang/Runnable"),
	iface("java/lang/AutoCloseable"),
	iface("java/lang/Appendable"),
	iface("java/lang/Iterable"),
	iface("java/io/Closeable", "java/lang/AutoCloseable"),
	iface("java/io/Flushable"),
	iface("java/lang/reflect/Type"),
	iface("java/lang/constant/Constable"),

	class("java/lang/String", objectName, "java/io/Serializable", "java/lang/Comparable", "java/lang/CharSequence", "java/lang/constant/Constable"),
	class("java/lang/Class", objectName, "java/io/Serializable", "java/lang/reflect/Type"),
	class("java/lang/System", objectName),
	class("java/lang/Math", objectName),
	class("java/lang/Thread", objectName, "java/lang/Runnable"),
	class("java/lang/Enum", objectName, "java/lang/Comparable", "java/io/Serializable"),
	class("java/lang/Record", objectName),
	class("java/lang/AbstractStringBuilder", objectName, "java/lang/Appendable", "java/lang/CharSequence"),
	class("java/lang/StringBuilder", "java/lang/AbstractStringBuilder", "java/io/Serializable", "java/lang/Comparable"),
	class("java/lang/StringBuffer", "java/lang/AbstractStringBuilder", "java/io/Serializable", "java/lang/Comparable"),

	class("java/lang/Number", objectName, "java/io/Serializable"),
	class("java/lang/Integer", "java/lang/Number", "java/lang/Comparable"),
	class("java/lang/Long", "java/lang/Number", "java/lang/Comparable"),
	class("java/lang/Float", "java/lang/Number", "java/lang/Comparable"),
	class("java/lang/Double", "java/lang/Number", "java/lang/Comparable"),
	class("java/lang/Short", "java/lang/Number", "java/lang/Comparable"),
	class("java/lang/Byte", "java/lang/Number", "java/lang/Comparable"),
	class("java/lang/Boolean", objectName, "java/io/Serializable", "java/lang/Comparable"),
	class("java/lang/Character", objectName, "java/io/Serializable", "java/lang/Comparable"),
	class("java/math/BigInteger", "java/lang/Number", "java/lang/Comparable"),
	class("java/math/BigDecimal", "java/lang/Number", "java/lang/Comparable"),

	class("java/lang/Throwable", objectName, "java/io/Serializable"),
	class("java/lang/Exception", "java/lang/Throwable"),
	class("java/lang/Error", "java/lang/Throwable"),
	class("java/lang/RuntimeException", "java/lang/Exception"),
	class("java/lang/ReflectiveOperationException", "java/lang/Exception"),
	class("java/lang/ClassNotFoundException", "java/lang/ReflectiveOperationException"),
	class("java/lang/InterruptedException", "java/lang/Exception"),
	class("java/lang/CloneNotSupportedException", "java/lang/Exception"),
	class("java/lang/IllegalArgumentException", "java/lang/RuntimeException"),
	class("java/lang/NumberFormatException", "java/lang/IllegalArgumentException"),
	class("java/lang/IllegalStateException", "java/lang/RuntimeException"),
	class("java/lang/NullPointerException", "java/lang/RuntimeException"),
	class("java/lang/ArithmeticException", "java/lang/RuntimeException"),
	class("java/lang/ClassCastException", "java/lang/RuntimeException"),
	class("java/lang/UnsupportedOperationException", "java/lang/RuntimeException"),
	class("java/lang/IndexOutOfBoundsException", "java/lang/RuntimeException"),
	class("java/lang/ArrayIndexOutOfBoundsException", "java/lang/IndexOutOfBoundsException"),
	class("java/lang/StringIndexOutOfBoundsException", "java/lang/IndexOutOfBoundsException"),
	class("java/lang/NegativeArraySizeException", "java/lang/RuntimeException"),
	class("java/lang/ArrayStoreException", "java/lang/RuntimeException"),
	class("java/lang/AssertionError", "java/lang/Error"),
	class("java/lang/LinkageError", "java/lang/Error"),
	class("java/lang/VirtualMachineError", "java/lang/Error"),
	class("java/lang/StackOverflowError", "java/lang/VirtualMachineError"),
	class("java/lang/OutOfMemoryError", "java/lang/VirtualMachineError"),
	class("java/io/IOException", "java/lang/Exception"),
	class("java/io/FileNotFoundException", "java/io/IOException"),
	class("java/io/UncheckedIOException", "java/lang/RuntimeException"),
	class("java/util/NoSuchElementException", "java/lang/RuntimeException"),
	class("java/util/ConcurrentModificationException", "java/lang/RuntimeException"),

	class("java/io/OutputStream", objectName, "java/io/Closeable", "java/io/Flushable"),
	class("java/io/FilterOutputStream", "java/io/OutputStream"),
	class("java/io/PrintStream", "java/io/FilterOutputStream", "java/lang/Appendable", "java/io/Closeable"),
	class("java/io/InputStream", objectName, "java/io/Closeable"),
	class("java/io/Reader", objectName, "java/io/Closeable"),
	class("java/io/Writer", objectName, "java/lang/Appendable", "java/io/Closeable", "java/io/Flushable"),

	iface("java/util/Iterator"),
	iface("java/util/Collection", "java/lang/Iterable"),
	iface("java/util/List", "java/util/Collection"),
	iface("java/util/Set", "java/util/Collection"),
	iface("java/util/Queue", "java/util/Collection"),
	iface("java/util/Deque", "java/util/Queue"),
	iface("java/util/Map"),
	iface("java/util/RandomAccess"),
	class("java/util/AbstractCollection", objectName, "java/util/Collection"),
	class("java/util/AbstractList", "java/util/AbstractCollection", "java/util/List"),
	class("java/util/ArrayList", "java/util/AbstractList", "java/util/List", "java/util/RandomAccess", "java/lang/Cloneable", "java/io/Serializable"),
	class("java/util/AbstractSequentialList", "java/util/AbstractList"),
	class("java/util/LinkedList", "java/util/AbstractSequentialList", "java/util/List", "java/util/Deque", "java/lang/Cloneable", "java/io/Serializable"),
	class("java/util/AbstractSet", "java/util/AbstractCollection", "java/util/Set"),
	class("java/util/HashSet", "java/util/AbstractSet", "java/util/Set", "java/lang/Cloneable", "java/io/Serializable"),
	class("java/util/AbstractMap", objectName, "java/util/Map"),
	class("java/util/HashMap", "java/util/AbstractMap", "java/util/Map", "java/lang/Cloneable", "java/io/Serializable"),
	class("java/util/Objects", objectName),
	class("java/util/Arrays", objectName),
	class("java/util/Optional", objectName),

	iface("java/util/function/Supplier"),
	iface("java/util/function/Function"),
	iface("java/util/function/Consumer"),
	iface("java/util/function/Predicate"),
	iface("java/util/function/BiFunction"),

	class("java/lang/invoke/MethodHandle", objectName),
	class("java/lang/invoke/MethodType", objectName, "java/io/Serializable"),
	class("java/lang/invoke/MethodHandles", objectName),
	class("java/lang/invoke/MethodHandles$Lookup", objectName),
	class("java/lang/invoke/CallSite", objectName),
	class("java/lang/invoke/ConstantCallSite", "java/lang/invoke/CallSite"),
	class("java/lang/invoke/LambdaMetafactory", objectName),
	class("java/lang/invoke/StringConcatFactory", objectName),
}
