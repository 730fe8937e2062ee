package weakrand

import (
	"math/rand"           // want `import of math/rand is forbidden, use crypto/rand`
	randv2 "math/rand/v2" // want `import of math/rand/v2 is forbidden, use crypto/rand`
)

func Pick(n int) int {
	return rand.Intn(n) + randv2.IntN(n)
}
