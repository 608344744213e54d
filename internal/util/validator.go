package util

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

var (
	slugRe     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)
	digitsRe   = regexp.MustCompile(`^[0-9]+$`)
)

// ValidateSlug 验证 slug：字母、数字、下划线、连字符，最长 255
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("slug is empty")
	}
	if len(slug) > 255 {
		return fmt.Errorf("slug too long, max 255 characters")
	}
	if !slugRe.MatchString(slug) {
		return fmt.Errorf("enter a valid slug consisting of letters, numbers, underscores or hyphens")
	}
	return nil
}

// ValidateUsername 验证用户名：最长 150，字母数字及 @/./+/-/_
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username is empty")
	}
	if utf8.RuneCountInString(username) > 150 {
		return fmt.Errorf("username too long, max 150 characters")
	}
	if !usernameRe.MatchString(username) {
		return fmt.Errorf("username may contain only letters, numbers, and @/./+/-/_ characters")
	}
	return nil
}

// ValidatePassword 验证密码：8-128 位，且不能全是数字
func ValidatePassword(pwd string) error {
	n := utf8.RuneCountInString(pwd)
	if n < 8 {
		return fmt.Errorf("password too short, min 8 characters")
	}
	if n > 128 {
		return fmt.Errorf("password too long, max 128 characters")
	}
	if digitsRe.MatchString(pwd) {
		return fmt.Errorf("password is entirely numeric")
	}
	return nil
}

// ValidateLength 验证字符串长度（按字符计）
func ValidateLength(s string, max int) error {
	if utf8.RuneCountInString(s) > max {
		return fmt.Errorf("ensure this field has no more than %d characters", max)
	}
	return nil
}
