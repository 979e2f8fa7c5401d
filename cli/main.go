package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
)

func main() {
	// 1. 定义命令行参数
	userType := flag.String("type", "patron", "注册类型 (patron 或 creditClient)")
	fullName := flag.String("name", "Demo User", "注册人姓名")
	email := flag.String("email", "demo@example.com", "联系邮箱")
	mobile := flag.String("mobile", "18888888888", "联系电话 (可选)")
	state := flag.String("state", "Maharashtra", "所在州/省 (可选)")
	host := flag.String("host", "http://localhost:8888", "服务地址")
	flag.Parse()

	// 2. 定义目标 API 地址
	url := *host + "/api/register"

	// 3. 准备请求数据
	requestData := map[string]interface{}{
		"userType": *userType,
		"fullName": *fullName,
		"email":    *email,
		"mobile":   *mobile,
		"state":    *state,
	}

	jsonData, err := json.Marshal(requestData)
	if err != nil {
		log.Fatalf("错误: 无法打包 JSON 数据: %v", err)
	}

	// 4. 创建并发送 HTTP POST 请求
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		log.Fatalf("错误: 无法创建请求: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	fmt.Printf("正向 %s 发送请求...\n", url)
	fmt.Printf("请求体: %s\n", string(jsonData))

	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("错误: 发送请求失败: %v", err)
	}
	defer resp.Body.Close()

	// 5. 读取并打印响应结果
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("错误: 读取响应体失败: %v", err)
	}

	fmt.Println("\n--- 响应结果 ---")
	fmt.Printf("HTTP 状态码: %d\n", resp.StatusCode)
	fmt.Printf("响应体: %s\n", string(body))
}
