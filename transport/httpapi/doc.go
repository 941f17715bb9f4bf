// Package httpapi exposes the five auth flows over HTTP with a chi router.
//
// Every flow is a POST route taking a JSON body and answering the standard
// envelope:
//
//	{"auth":{"error":false,"code":20,"interceptCode":0},"data":{...}}
//
// Routes whose state is removed are not mounted and fall through to the
// router's 404. Disabled routes stay mounted and answer their disabled code.
// Status codes follow [StatusFor]; the body code is always authoritative.
package httpapi
