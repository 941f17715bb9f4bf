package httpapi

import (
	"net/http"

	"github.com/MrEthical07/authtools"
)

// StatusFor maps a response code to its HTTP status.
func StatusFor(code authtools.Code) int {
	switch code {
	case authtools.CodeRegisterSuccess, authtools.CodeLoginSuccess, authtools.CodeRefreshSuccess:
		return http.StatusCreated
	case authtools.CodeOK, authtools.CodeLogoutSuccess, authtools.CodeCheckSuccess:
		return http.StatusOK
	case authtools.CodeAccessTokenMissing,
		authtools.CodeRegisterMissingInput,
		authtools.CodeLoginMissingInput,
		authtools.CodeLogoutMissingInput,
		authtools.CodeRefreshMissingInput,
		authtools.CodeCheckMissingInput:
		return http.StatusBadRequest
	case authtools.CodeRegisterMalformedMail, authtools.CodeRegisterWeakPassword:
		return http.StatusNotAcceptable
	case authtools.CodeLogoutTokenNotFound, authtools.CodeRefreshTokenNotFound, authtools.CodeCheckTokenNotFound:
		return http.StatusNotFound
	case authtools.CodeServerError:
		return http.StatusInternalServerError
	default:
		return http.StatusForbidden
	}
}
