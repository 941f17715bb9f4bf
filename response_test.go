package authtools

import (
	"encoding/json"
	"testing"
)

func TestResponseConstructors(t *testing.T) {
	data := &RefreshData{AccessToken: "a"}

	ok := Success(CodeRefreshSuccess, data)
	if !ok.OK() || ok.Auth.Code != CodeRefreshSuccess || ok.Data != data {
		t.Fatalf("unexpected success envelope %+v", ok)
	}

	failed := Failure[RefreshData](CodeRefreshInvalidToken)
	if failed.OK() || failed.Data != nil || failed.Auth.InterceptCode != 0 {
		t.Fatalf("unexpected failure envelope %+v", failed)
	}

	vetoed := Intercepted[RefreshData](CodeRefreshIntercepted, 42)
	if vetoed.OK() || vetoed.Auth.Code != CodeRefreshIntercepted || vetoed.Auth.InterceptCode != 42 || vetoed.Data != nil {
		t.Fatalf("unexpected intercept envelope %+v", vetoed)
	}

	raw, err := json.Marshal(vetoed)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"auth":{"error":true,"code":49,"interceptCode":42},"data":null}`
	if string(raw) != want {
		t.Fatalf("json = %s, want %s", raw, want)
	}

	if se := ServerError[NoData](); se.OK() || se.Auth.Code != CodeServerError {
		t.Fatalf("unexpected server error envelope %+v", se)
	}
}
