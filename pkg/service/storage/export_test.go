package storage

var (
	ObjectName  = objectName
	ContentType = contentType
)
