// Package security はアプリケーションのセキュリティ機能を提供する。
package security

import (
	"fmt"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/doyensec/safeurl"
)

// URLGuard はレシピ抽出でユーザー指定のURLを取得する際のSSRF防止を担う。
// 事前検証（ValidateURL）とDialerレベル検証付きクライアント（NewSafeClient）の
// 二段構えで、内部ネットワークへの到達を防ぐ。
type URLGuard struct {
	blocked []netip.Prefix
}

// blockedPrefixes は抽出の取得先として許可しないネットワーク範囲。
var blockedPrefixes = []string{
	// プライベートIPアドレス (RFC 1918)
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	// ループバック (RFC 1122)
	"127.0.0.0/8",
	// リンクローカル (RFC 3927) - クラウドメタデータIP (169.254.169.254) を含む
	"169.254.0.0/16",
	// カレントネットワーク
	"0.0.0.0/8",
	// IPv6ループバック
	"::1/128",
	// IPv6リンクローカル
	"fe80::/10",
	// IPv6ユニークローカル
	"fc00::/7",
}

// NewURLGuard はURLGuardを生成する。
// ブロック対象のネットワーク範囲はここで1回だけパースする。
func NewURLGuard() *URLGuard {
	g := &URLGuard{blocked: make([]netip.Prefix, 0, len(blockedPrefixes))}
	for _, cidr := range blockedPrefixes {
		prefix, err := netip.ParsePrefix(cidr)
		if err != nil {
			panic(fmt.Sprintf("invalid CIDR in blockedPrefixes: %s: %v", cidr, err))
		}
		g.blocked = append(g.blocked, prefix)
	}
	return g
}

// NewSafeClient はSSRF防止機能付きのHTTPクライアントを生成する。
// safeurlがnet.DialerのControlフックでDNS解決後のIPアドレスを検証するため、
// ValidateURLをすり抜けるDNS再バインディング攻撃もここで防止される。
// レシピページの取得先はhttp/httpsの標準ポートに限定する。
func (g *URLGuard) NewSafeClient(timeout time.Duration) *http.Client {
	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes("http", "https").
		SetAllowedPorts(80, 443).
		Build()

	return safeurl.Client(config).Client
}

// ValidateURL はユーザー指定のURLがレシピページとして取得可能かを事前検証する。
// DNS解決を伴わない静的チェックのみを行い、危険なURLの場合はエラーを返す。
func (g *URLGuard) ValidateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("empty URL")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("disallowed scheme: %s (allowed: http, https)", scheme)
	}

	host := normalizeHost(parsed.Hostname())
	if host == "" {
		return fmt.Errorf("empty host in URL: %s", rawURL)
	}

	// IPアドレス直指定の場合はブロック対象範囲と照合する
	if addr, err := netip.ParseAddr(host); err == nil {
		if g.isBlockedAddr(addr) {
			return fmt.Errorf("blocked IP address: %s", addr)
		}
		return nil
	}

	if isLocalHostname(host) {
		return fmt.Errorf("blocked host: %s", host)
	}

	return nil
}

// isBlockedAddr はIPアドレスがブロック対象の範囲に含まれるかを検証する。
// IPv4射影アドレス（::ffff:127.0.0.1）もIPv4側の範囲で照合する。
func (g *URLGuard) isBlockedAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, prefix := range g.blocked {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// normalizeHost はホスト名を照合用に正規化する。
// 末尾ドット付きFQDN（localhost.）も同じホストとして扱う。
func normalizeHost(host string) string {
	return strings.TrimSuffix(strings.ToLower(host), ".")
}

// isLocalHostname はループバックに解決されるホスト名表記かを検証する。
// *.localhostはRFC 6761によりループバック扱いとなる。
func isLocalHostname(host string) bool {
	return host == "localhost" || strings.HasSuffix(host, ".localhost")
}
