package model

import (
	"strings"

	"mingle_chat_server/pkg/errorx"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RelatedModel 多态引用的判别标签，指明 RelatedTo 指向哪个集合
type RelatedModel string

const (
	RelatedChat    RelatedModel = "Chat"
	RelatedMessage RelatedModel = "Message"
	RelatedUser    RelatedModel = "User"
)

// relatedModels 标签查找表，键为小写形式以支持大小写不敏感解析
var relatedModels = map[string]RelatedModel{
	"chat":    RelatedChat,
	"message": RelatedMessage,
	"user":    RelatedUser,
}

// ParseRelatedModel 解析判别标签（大小写不敏感）
// 非法标签返回 CodeValidation 错误
func ParseRelatedModel(s string) (RelatedModel, error) {
	m, ok := relatedModels[strings.ToLower(s)]
	if !ok {
		return "", errorx.Newf(errorx.CodeValidation, "unknown related model %q", s)
	}
	return m, nil
}

// Relation 多态引用：引用 id + 判别标签，二者要么都有要么都无
// 内嵌到 Media 和 Notification
type Relation struct {
	RelatedTo primitive.ObjectID `bson:"related_to,omitempty" json:"related_to,omitempty"`
	OnModel   RelatedModel       `bson:"on_model,omitempty" json:"on_model,omitempty"`
}

// HasRelation 判断是否携带引用
func (r *Relation) HasRelation() bool {
	return !r.RelatedTo.IsZero()
}
