package objects

// WeightID 权重表只有一行
const WeightID uint = 1

// Weight 对应 weights 表，热度计算的权重向量
type Weight struct {
	ID                uint    `gorm:"primaryKey;autoIncrement:false" json:"id"`
	PostCountWeight   float64 `json:"post_count_weight"`
	AvgLikesWeight    float64 `json:"avg_likes_weight"`
	AvgCommentsWeight float64 `json:"avg_comments_weight"`
	AvgRepostsWeight  float64 `json:"avg_reposts_weight"`
}

func (Weight) TableName() string {
	return "weights"
}

// UniformWeight 退化情况下使用的等权重
func UniformWeight() Weight {
	return Weight{
		ID:                WeightID,
		PostCountWeight:   0.25,
		AvgLikesWeight:    0.25,
		AvgCommentsWeight: 0.25,
		AvgRepostsWeight:  0.25,
	}
}
