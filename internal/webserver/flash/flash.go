// Package flash 单槽位闪存消息
//
// 闪存消息是跨一次重定向携带的一次性通知，存放在客户端持有的
// HTTP-only Cookie 中，值为 HS256 签名的 JWT，防止客户端篡改。
// 服务端读取即清除：读取请求本身仍能看到消息，但响应会指示客户端
// 丢弃 Cookie。同一响应中后续的写入会覆盖清除指令（新消息存活，
// 旧消息不会重复生效）。任意时刻至多一条消息在途，后写覆盖先写。
package flash

import (
	"fmt"
	"html"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
)

// 消息类型的固定词汇表
const (
	TypeSignupSuccess = "signup_success"
	TypeClientError   = "client_error"
	TypeServerError   = "server_error"
	TypeOverLimit     = "over_limit"
	TypePostSuccess   = "post_success"
	TypeUpdateSuccess = "update_success"
	TypeNoUpdate      = "no_update"
	TypeReturnTo      = "return_to"
)

// 用户可见文案的固定词汇表
const (
	TextSignupSuccess = "You successfully signed up!"
	TextServerError   = "Something went wrong. Please try again"
	TextClientError   = "Invalid credentials"
	TextOverLimit     = "You cannot have more than 10 active listings"
	TextPostSuccess   = "Your listing has been posted!"
	TextUpdateSuccess = "Changes saved!"
	TextNoUpdate      = "Note: No changes made"
)

// Message 一次性闪存消息
type Message struct {
	Type  string
	Text  string
	Email string
}

// claims JWT 载荷
type claims struct {
	jwt.RegisteredClaims
	Type  string `json:"type"`
	Text  string `json:"text"`
	Email string `json:"email,omitempty"`
}

// Codec 闪存消息编解码器
type Codec struct {
	cookieName string
	secret     []byte
}

// NewCodec 创建编解码器
// secret 为空时签名退化为可伪造，启动时应由配置层拒绝
func NewCodec(cookieName, secret string) *Codec {
	return &Codec{cookieName: cookieName, secret: []byte(secret)}
}

// Set 将消息写入响应 Cookie（覆盖任何在途消息）
func (c *Codec) Set(w http.ResponseWriter, msg Message) error {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Type:  msg.Type,
		Text:  msg.Text,
		Email: msg.Email,
	})
	value, err := token.SignedString(c.secret)
	if err != nil {
		return fmt.Errorf("flash: sign: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     c.cookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// TakeMessage 读取并清除在途消息
//
// Cookie 不存在时返回 nil。存在时无论解析是否成功都先写入清除指令，
// 再验证签名并对 type/text/email 做 HTML 转义（该值经过客户端回传，
// 可能被篡改）。签名无效的消息按不存在处理。
func (c *Codec) TakeMessage(w http.ResponseWriter, r *http.Request) *Message {
	cookie, err := r.Cookie(c.cookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	c.clear(w)

	msg, err := c.decode(cookie.Value)
	if err != nil {
		return nil
	}
	return msg
}

// decode 验证签名并转义字段
func (c *Codec) decode(value string) (*Message, error) {
	var cl claims
	token, err := jwt.ParseWithClaims(value, &cl, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("flash: parse: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("flash: invalid token")
	}

	return &Message{
		Type:  html.EscapeString(cl.Type),
		Text:  html.EscapeString(cl.Text),
		Email: html.EscapeString(cl.Email),
	}, nil
}

// clear 指示客户端丢弃闪存 Cookie
// 同一响应中后续的 Set 会追加新的 Set-Cookie 头，客户端以最后一条为准
func (c *Codec) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
