package config

// Initialize 触发本目录下所有配置文件的 init 加载
func Initialize() {
	// 仅用于触发包加载
}
