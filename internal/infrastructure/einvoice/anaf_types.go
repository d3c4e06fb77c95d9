package einvoice

import "encoding/xml"

// anafUploadResponse is the header document returned by the upload
// endpoint. ExecutionStatus "0" means the document was queued and
// index_incarcare carries the upload index used for status polling.
type anafUploadResponse struct {
	XMLName         xml.Name    `xml:"header"`
	ExecutionStatus string      `xml:"ExecutionStatus,attr"`
	UploadIndex     string      `xml:"index_incarcare,attr"`
	Errors          []anafError `xml:"Errors"`
}

// anafStatusResponse is the header document returned by stareMesaj.
// State is "ok", "nok" or "in prelucrare".
type anafStatusResponse struct {
	XMLName    xml.Name    `xml:"header"`
	State      string      `xml:"stare,attr"`
	DownloadID string      `xml:"id_descarcare,attr"`
	Errors     []anafError `xml:"Errors"`
}

type anafError struct {
	Message string `xml:"errorMessage,attr"`
}

// State values returned by stareMesaj
const (
	anafStateAccepted   = "ok"
	anafStateRejected   = "nok"
	anafStateProcessing = "in prelucrare"
)
