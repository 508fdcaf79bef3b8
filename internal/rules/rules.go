// Package rules はudev形式の分類ルールを解釈する小さなインタープリタを提供する
//
// ルールは改行区切りの節からなり、各節はコンマ区切りのトークンを持つ:
//
//	KEY=="pattern"  一致条件（*や?のグロブを使用可能）
//	KEY!="pattern"  不一致条件
//	KEY="value"     プロパティの設定
//	GOTO="label"    指定ラベルへのジャンプ
//	LABEL="name"    ジャンプ先ラベルの定義
//
// 節内の条件がすべて成立した場合のみ、その節の設定とジャンプが実行される
package rules

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrRuleParse は分類ルールの解析に失敗したことを表す
var ErrRuleParse = errors.New("分類ルールの解析に失敗しました")

// Env はシミュレートされたudevプロパティ環境を表す
type Env map[string]string

type opKind int

const (
	opMatch   opKind = iota // ==
	opNoMatch               // !=
)

type condition struct {
	key     string
	pattern string
	op      opKind
}

type assignment struct {
	key   string
	value string
}

type clause struct {
	line       int
	conditions []condition
	assigns    []assignment
	gotoLabel  string
	label      string
}

// Ruleset は解析済みの分類ルールを表す
// LABELの位置は解析時に索引化され、GOTOはインデックスジャンプとして解決される
type Ruleset struct {
	clauses []clause
	labels  map[string]int
}

// Parse はルールテキストを解析する
func Parse(text string) (*Ruleset, error) {
	rs := &Ruleset{labels: make(map[string]int)}

	for num, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		c := clause{line: num + 1}
		for _, token := range strings.Split(line, ",") {
			token = strings.TrimSpace(token)
			if token == "" {
				continue
			}
			if err := parseToken(&c, token); err != nil {
				return nil, fmt.Errorf("%w: %d行目: %v", ErrRuleParse, num+1, err)
			}
		}

		idx := len(rs.clauses)
		if c.label != "" {
			if _, ok := rs.labels[c.label]; ok {
				return nil, fmt.Errorf("%w: %d行目: ラベル %q が重複しています", ErrRuleParse, num+1, c.label)
			}
			rs.labels[c.label] = idx
		}
		rs.clauses = append(rs.clauses, c)
	}

	// GOTOの参照先を検証する。後方ジャンプはループとなるため前方のみ許す
	for i, c := range rs.clauses {
		if c.gotoLabel == "" {
			continue
		}
		target, ok := rs.labels[c.gotoLabel]
		if !ok {
			return nil, fmt.Errorf("%w: %d行目: ラベル %q が定義されていません", ErrRuleParse, c.line, c.gotoLabel)
		}
		if target <= i {
			return nil, fmt.Errorf("%w: %d行目: ラベル %q への後方ジャンプはできません", ErrRuleParse, c.line, c.gotoLabel)
		}
	}

	return rs, nil
}

// parseToken は1トークンを解析して節に追加する
func parseToken(c *clause, token string) error {
	// 演算子は引用符の外側でのみ探す。値の中の==や=は区切りにならない
	head := token
	if q := strings.IndexByte(token, '"'); q >= 0 {
		head = token[:q]
	}

	var key, rest string
	var op opKind
	var isCond bool

	switch {
	case strings.Contains(head, "!="):
		key, rest, _ = strings.Cut(token, "!=")
		op, isCond = opNoMatch, true
	case strings.Contains(head, "=="):
		key, rest, _ = strings.Cut(token, "==")
		op, isCond = opMatch, true
	case strings.Contains(head, "="):
		key, rest, _ = strings.Cut(token, "=")
	default:
		return fmt.Errorf("演算子がありません: %q", token)
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("キーがありません: %q", token)
	}

	value, err := unquote(strings.TrimSpace(rest))
	if err != nil {
		return err
	}

	if isCond {
		// グロブパターンの妥当性は解析時に検証しておく
		if _, err := path.Match(value, ""); err != nil {
			return fmt.Errorf("不正なパターンです: %q", value)
		}
		c.conditions = append(c.conditions, condition{key: key, pattern: value, op: op})
		return nil
	}

	switch key {
	case "GOTO":
		if c.gotoLabel != "" {
			return errors.New("GOTOが重複しています")
		}
		c.gotoLabel = value
	case "LABEL":
		if c.label != "" {
			return errors.New("LABELが重複しています")
		}
		c.label = value
	default:
		c.assigns = append(c.assigns, assignment{key: key, value: value})
	}
	return nil
}

// unquote は引用符で囲まれた値を取り出す
func unquote(s string) (string, error) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", fmt.Errorf("値が引用符で囲まれていません: %q", s)
	}
	return s[1 : len(s)-1], nil
}

// Apply は環境に対してルールを評価し、設定されたプロパティを返す
// 呼び出し元の環境は変更されない
func (rs *Ruleset) Apply(env Env) map[string]string {
	work := make(Env, len(env))
	for k, v := range env {
		work[k] = v
	}

	derived := make(map[string]string)
	for i := 0; i < len(rs.clauses); {
		c := rs.clauses[i]
		if !matchAll(c.conditions, work) {
			i++
			continue
		}
		for _, a := range c.assigns {
			work[a.key] = a.value
			derived[a.key] = a.value
		}
		if c.gotoLabel != "" {
			// ラベル行自体は無条件の空節なので、そこから継続してよい
			i = rs.labels[c.gotoLabel]
			continue
		}
		i++
	}
	return derived
}

func matchAll(conds []condition, env Env) bool {
	for _, c := range conds {
		if !match(c, env) {
			return false
		}
	}
	return true
}

func match(c condition, env Env) bool {
	value, present := env[c.key]

	var matched bool
	if c.pattern == "" {
		// 空パターンは「未設定または空」に一致する
		matched = !present || value == ""
	} else {
		matched, _ = path.Match(c.pattern, value)
	}

	if c.op == opNoMatch {
		return !matched
	}
	return matched
}
