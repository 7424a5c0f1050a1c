package kafka_test

import (
	"testing"

	"github.com/ardanlabs/blockledger/foundation/stream/kafka"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Config(t *testing.T) {
	type table struct {
		name string
		cfg  kafka.Config
	}

	tt := []table{
		{name: "no-brokers", cfg: kafka.Config{Topic: "my-topic"}},
		{name: "no-topic", cfg: kafka.Config{Brokers: []string{"localhost:9092"}}},
		{name: "bad-bytes", cfg: kafka.Config{Brokers: []string{"localhost:9092"}, Topic: "my-topic", MinBytes: 100, MaxBytes: 10}},
	}

	t.Log("Given the need to reject an incomplete kafka configuration.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen handling the %s configuration.", testID, tst.name)
				{
					if _, err := kafka.New(tst.cfg); err == nil {
						t.Fatalf("\t%s\tTest %d:\tShould get an error.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get an error.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}

	t.Log("Given the need to produce to kafka.")
	{
		t.Logf("\tTest 0:\tWhen no brokers are provided.")
		{
			if _, err := kafka.NewProducer(nil, "my-topic"); err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould get an error.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould get an error.", success)
		}
	}
}
