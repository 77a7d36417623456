package adversary_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestAdversary(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Adversary Sybil-Bound Trust Suite")
}
