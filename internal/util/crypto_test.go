package util

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

// ============ 密码哈希测试 ============

func TestHashPassword(t *testing.T) {
	password := "journal-pass-01"

	hashed, err := HashPassword(password, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("哈希失败: %v", err)
	}
	if !strings.HasPrefix(hashed, "$2a$") {
		t.Errorf("哈希格式错误: %s", hashed)
	}

	// 测试空密码
	if _, err = HashPassword("", bcrypt.MinCost); err == nil {
		t.Error("空密码应返回错误")
	}

	// 测试相同密码生成不同哈希
	hashed2, _ := HashPassword(password, bcrypt.MinCost)
	if hashed == hashed2 {
		t.Error("相同密码应生成不同哈希（随机salt）")
	}
}

func TestHashPassword_CostOutOfRange(t *testing.T) {
	hashed, err := HashPassword("pw-out-of-range", 99)
	if err != nil {
		t.Fatalf("哈希失败: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hashed))
	if err != nil || cost != bcrypt.DefaultCost {
		t.Errorf("cost = %d, want %d", cost, bcrypt.DefaultCost)
	}
}

func TestCheckPassword(t *testing.T) {
	password := "morning-pages"
	hashed, _ := HashPassword(password, bcrypt.MinCost)

	if !CheckPassword(password, hashed) {
		t.Error("正确密码验证失败")
	}
	if CheckPassword("evening-pages", hashed) {
		t.Error("错误密码不应通过验证")
	}
	if CheckPassword("", hashed) {
		t.Error("空密码不应通过验证")
	}
	if CheckPassword(password, "") {
		t.Error("空哈希不应通过验证")
	}
	if CheckPassword(password, "invalid-format") {
		t.Error("无效格式不应通过验证")
	}
}

// ============ 随机字符串测试 ============

func TestRandomString(t *testing.T) {
	str, err := RandomString(32)
	if err != nil {
		t.Fatalf("生成失败: %v", err)
	}
	if len(str) != 32 {
		t.Errorf("长度错误: 期望32，实际%d", len(str))
	}

	other, _ := RandomString(32)
	if str == other {
		t.Error("应生成不同的随机字符串")
	}

	if _, err = RandomString(0); err == nil {
		t.Error("长度0应返回错误")
	}
}

// ============ AES 加密测试 ============

func TestEncryptDecryptAES(t *testing.T) {
	key := "audit-encryption-key"

	testCases := []string{
		`POST /api/entries {"title":"Monday"}`,
		"今天的日记",
		"",
		`{"quote_of_the_day":"carpe diem!"}`,
		strings.Repeat("x", 2000),
	}

	for _, plaintext := range testCases {
		encrypted, err := EncryptAES(key, []byte(plaintext))
		if err != nil {
			t.Fatalf("加密失败 '%s': %v", plaintext, err)
		}

		decrypted, err := DecryptAES(key, encrypted)
		if err != nil {
			t.Fatalf("解密失败 '%s': %v", plaintext, err)
		}

		if string(decrypted) != plaintext {
			t.Errorf("数据不匹配\n期望: %s\n实际: %s", plaintext, string(decrypted))
		}
	}
}

func TestDecryptAES_WrongKey(t *testing.T) {
	encrypted, _ := EncryptAES("correct-key", []byte("Data"))

	if _, err := DecryptAES("wrong-key", encrypted); err == nil {
		t.Error("错误密钥应解密失败")
	}
}

func TestDecryptAES_InvalidData(t *testing.T) {
	if _, err := DecryptAES("test-key", []byte{1, 2, 3}); err == nil {
		t.Error("过短数据应返回错误")
	}
	if _, err := DecryptAES("test-key", []byte{}); err == nil {
		t.Error("空数据应返回错误")
	}
}

func TestEncryptString(t *testing.T) {
	enc, err := EncryptString("k", "/api/templates")
	if err != nil {
		t.Fatalf("加密失败: %v", err)
	}
	if enc == "/api/templates" {
		t.Error("密文不应等于明文")
	}
	plain, err := DecryptString("k", enc)
	if err != nil || plain != "/api/templates" {
		t.Errorf("DecryptString() = %q, %v", plain, err)
	}

	// key 为空时不加密
	enc, _ = EncryptString("", "plain")
	if enc != "plain" {
		t.Errorf("空 key 应原样返回, got %q", enc)
	}

	if _, err := DecryptString("k", "%%%"); err == nil {
		t.Error("非 base64 输入应返回错误")
	}
}

// ============ 性能测试 ============

func BenchmarkEncryptString(b *testing.B) {
	action := `PATCH /api/entries/0b6f {"rate_your_day":8}`
	for i := 0; i < b.N; i++ {
		_, _ = EncryptString("bench-key", action)
	}
}
