package registration

import (
	"fmt"
	"math/rand/v2"

	"bluemercantile/internal/constant"
)

const passwordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

const passwordLength = 8

// GenerateUserID builds a login id from the user-type prefix plus a random
// 4-digit suffix, e.g. ptrn4821 or crdcl1037. 注意：没有查重，4 位随机后缀
// 存在撞号风险（见 DESIGN.md），保留原有行为。
func GenerateUserID(userType string) string {
	return fmt.Sprintf("%s%d", constant.UserIDPrefix(userType), 1000+rand.IntN(9000))
}

// GeneratePassword returns an 8-character alphanumeric password. Not a
// cryptographic secret; the password is stored and shown in plaintext anyway.
func GeneratePassword() string {
	buf := make([]byte, passwordLength)
	for i := range buf {
		buf[i] = passwordAlphabet[rand.IntN(len(passwordAlphabet))]
	}
	return string(buf)
}
