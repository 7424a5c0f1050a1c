package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ardanlabs/blockledger/foundation/blockchain/digest"
	"github.com/pterm/pterm"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func execute(args ...string) (string, error) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func Test_Digest(t *testing.T) {
	t.Log("Given the need to compute a block hash from the command line.")
	{
		t.Logf("\tTest 0:\tWhen hashing a genesis block.")
		{
			out, err := execute("digest", "--algorithm", "sha3-512", "--timestamp", "1700000000000", "--payload", "Genesis Block")
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to compute the hash: %v", failed, err)
			}

			exp := digest.Hash(digest.SHA3_512, 0, 1700000000000, digest.SHA3_512.ZeroHash(), "Genesis Block")
			if strings.TrimSpace(out) != exp {
				t.Logf("\t%s\tTest 0:\tgot: %s", failed, out)
				t.Logf("\t%s\tTest 0:\texp: %s", failed, exp)
				t.Fatalf("\t%s\tTest 0:\tShould match the ledger hash.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould match the ledger hash.", success)
		}

		t.Logf("\tTest 1:\tWhen naming an unknown algorithm.")
		{
			if _, err := execute("digest", "--algorithm", "md5"); err == nil {
				t.Fatalf("\t%s\tTest 1:\tShould fail.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould fail.", success)
		}
	}
}

func Test_Validate(t *testing.T) {
	pterm.DisableColor()

	type table struct {
		name  string
		body  string
		fails bool
	}

	tt := []table{
		{name: "valid", body: `{"valid":true,"violations":[]}`},
		{name: "invalid", body: `{"valid":false,"violations":[{"index":2,"error":"block[2]: previous hash mismatch"}]}`, fails: true},
	}

	t.Log("Given the need to audit a remote chain.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen the chain is %s.", testID, tst.name)
				{
					srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
						if r.URL.Path != "/v1/chain/validate" {
							w.WriteHeader(http.StatusNotFound)
							return
						}
						w.Header().Set("Content-Type", "application/json")
						w.Write([]byte(tst.body))
					}))
					defer srv.Close()

					out, err := execute("validate", "--url", srv.URL)
					if (err != nil) != tst.fails {
						t.Fatalf("\t%s\tTest %d:\tShould fail only for an invalid chain: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould fail only for an invalid chain.", success, testID)

					if tst.fails && !strings.Contains(out, "blk[2]") {
						t.Fatalf("\t%s\tTest %d:\tShould list the violation: %s", failed, testID, out)
					}
					t.Logf("\t%s\tTest %d:\tShould list the violations.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}
