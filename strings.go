package httpcore

var (
	defaultServerName  = []byte("httpcore")
	defaultContentType = []byte("text/plain; charset=utf-8")
)

var (
	strCRLF     = []byte("\r\n")
	strCRLFCRLF = []byte("\r\n\r\n")
	strColon    = []byte(":")
	strColonSpace = []byte(": ")
	strComma    = []byte(",")
	strHTTP11   = []byte("HTTP/1.1")
	strHTTP10   = []byte("HTTP/1.0")
	strGMT      = []byte("GMT")

	strGet  = []byte("GET")
	strHead = []byte("HEAD")
	strPost = []byte("POST")

	strConnection       = []byte("Connection")
	strContentLength    = []byte("Content-Length")
	strContentType      = []byte("Content-Type")
	strDate             = []byte("Date")
	strHost             = []byte("Host")
	strServer           = []byte("Server")
	strTransferEncoding = []byte("Transfer-Encoding")
	strTrailer          = []byte("Trailer")
	strUserAgent        = []byte("User-Agent")

	strClose   = []byte("close")
	strChunked = []byte("chunked")
)

const maxHexIntChars = 16
